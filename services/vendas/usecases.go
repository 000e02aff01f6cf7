package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ElegibilidadeUseCase resolve o desconto de um cliente
type ElegibilidadeUseCase struct {
	clientes ClienteRepository
}

// NewElegibilidadeUseCase cria uma nova instância de ElegibilidadeUseCase
func NewElegibilidadeUseCase(clientes ClienteRepository) *ElegibilidadeUseCase {
	return &ElegibilidadeUseCase{clientes: clientes}
}

// Avaliar consulta o predicado de desconto. Falha de consulta degrada
// para venda sem desconto em vez de bloquear o caixa.
func (uc *ElegibilidadeUseCase) Avaliar(ctx context.Context, matricula string) Elegibilidade {
	eleg, err := uc.clientes.AvaliarElegibilidade(ctx, matricula)
	if err != nil {
		log.Printf("❌ [ELEGIBILIDADE] Matricula=%s | Error=%v | seguindo sem desconto", matricula, err)
		return Elegibilidade{}
	}
	return eleg
}

// CarrinhoUseCase contém a lógica de negócio do carrinho
type CarrinhoUseCase struct {
	carrinhos *CarrinhoStore
	produtos  ProdutoRepository
}

// NewCarrinhoUseCase cria uma nova instância de CarrinhoUseCase
func NewCarrinhoUseCase(carrinhos *CarrinhoStore, produtos ProdutoRepository) *CarrinhoUseCase {
	return &CarrinhoUseCase{
		carrinhos: carrinhos,
		produtos:  produtos,
	}
}

// Abrir cria um carrinho vazio
func (uc *CarrinhoUseCase) Abrir() *Carrinho {
	carrinho := uc.carrinhos.Criar()
	log.Printf("🛒 [CARRINHO] Aberto: %s", carrinho.ID)
	return carrinho
}

// Buscar retorna o carrinho pelo ID
func (uc *CarrinhoUseCase) Buscar(carrinhoID string) (*Carrinho, error) {
	return uc.carrinhos.Buscar(carrinhoID)
}

// AdicionarItem adiciona um produto ao carrinho, congelando o preço
// unitário no momento da adição. Alterações de preço posteriores não
// afetam itens já adicionados.
func (uc *CarrinhoUseCase) AdicionarItem(ctx context.Context, carrinhoID, produtoID string, quantidade int) (*Carrinho, error) {
	if !ValidarQuantidadeItem(quantidade) {
		return nil, fmt.Errorf("%w: quantidade deve ser um inteiro positivo", ErrQuantidadeInvalida)
	}

	if _, err := uc.carrinhos.Buscar(carrinhoID); err != nil {
		return nil, err
	}

	// leitura fresca do produto a cada adição
	produto, err := uc.produtos.Buscar(ctx, produtoID)
	if err != nil {
		return nil, err
	}

	// checagem consultiva de estoque: a quantidade deste item contra o
	// saldo atual. A garantia definitiva é o decremento condicional no
	// momento do commit da venda.
	if quantidade > produto.Quantidade {
		return nil, fmt.Errorf("%w para o produto %s: solicitado %d, disponível %d",
			ErrEstoqueInsuficiente, produto.Nome, quantidade, produto.Quantidade)
	}

	return uc.carrinhos.Adicionar(carrinhoID, ItemCarrinho{
		ProdutoID:     produto.ID,
		ProdutoNome:   produto.Nome,
		Quantidade:    quantidade,
		ValorUnitario: produto.Preco,
	})
}

// RemoverUltimo remove o item mais recente do carrinho
func (uc *CarrinhoUseCase) RemoverUltimo(carrinhoID string) (*Carrinho, error) {
	return uc.carrinhos.RemoverUltimo(carrinhoID)
}

// Descartar abandona o carrinho sem efeito sobre estoque ou vendas
func (uc *CarrinhoUseCase) Descartar(carrinhoID string) error {
	if _, err := uc.carrinhos.Buscar(carrinhoID); err != nil {
		return err
	}
	uc.carrinhos.Descartar(carrinhoID)
	log.Printf("🗑️ [CARRINHO] Descartado: %s", carrinhoID)
	return nil
}

// RegistrarVendaRequest carrega os dados do fechamento de uma venda
type RegistrarVendaRequest struct {
	CarrinhoID        string
	ClienteMatricula  string
	VendedorMatricula string
	FormaPagamento    FormaPagamento
}

// VendaUseCase contém a lógica de negócio das vendas
type VendaUseCase struct {
	vendas     VendaRepository
	produtos   ProdutoRepository
	clientes   ClienteRepository
	vendedores VendedorRepository

	elegibilidade *ElegibilidadeUseCase
	carrinhos     *CarrinhoStore

	tracer            trace.Tracer
	vendasRegistradas metric.Int64Counter
}

// NewVendaUseCase cria uma nova instância de VendaUseCase
func NewVendaUseCase(
	vendas VendaRepository,
	produtos ProdutoRepository,
	clientes ClienteRepository,
	vendedores VendedorRepository,
	elegibilidade *ElegibilidadeUseCase,
	carrinhos *CarrinhoStore,
	tracer trace.Tracer,
	vendasRegistradas metric.Int64Counter,
) *VendaUseCase {
	return &VendaUseCase{
		vendas:            vendas,
		produtos:          produtos,
		clientes:          clientes,
		vendedores:        vendedores,
		elegibilidade:     elegibilidade,
		carrinhos:         carrinhos,
		tracer:            tracer,
		vendasRegistradas: vendasRegistradas,
	}
}

// RegistrarVenda fecha um carrinho como venda PENDENTE. Cabeçalho,
// itens, atribuição ao vendedor e baixa de estoque são gravados numa
// única transação: ou tudo entra, ou nada entra.
func (uc *VendaUseCase) RegistrarVenda(ctx context.Context, req RegistrarVendaRequest) (*Venda, error) {
	ctx, span := uc.tracer.Start(ctx, "VendaUseCase.RegistrarVenda")
	defer span.End()

	log.Printf("➡️ [REGISTRAR VENDA] CarrinhoID: %s | Cliente: %s | Vendedor: %s",
		req.CarrinhoID, req.ClienteMatricula, req.VendedorMatricula)

	// 1. Valida cliente e vendedor
	cliente, err := uc.clientes.Buscar(ctx, req.ClienteMatricula)
	if err != nil {
		return nil, err
	}

	vendedor, err := uc.vendedores.Buscar(ctx, req.VendedorMatricula)
	if err != nil {
		return nil, err
	}
	if !vendedor.Ativo {
		return nil, fmt.Errorf("%w: %s", ErrVendedorInativo, vendedor.Matricula)
	}

	// 2. Carrinho precisa existir e ter ao menos um item
	carrinho, err := uc.carrinhos.Buscar(req.CarrinhoID)
	if err != nil {
		return nil, err
	}
	if len(carrinho.Itens) == 0 {
		return nil, ErrCarrinhoVazio
	}

	// 3. Resolve a elegibilidade de desconto
	eleg := uc.elegibilidade.Avaliar(ctx, cliente.Matricula)

	// 4. Monta a venda a partir dos preços congelados do carrinho
	vendaID := uuid.New().String()
	itens := make([]ItemVenda, 0, len(carrinho.Itens))
	for _, item := range carrinho.Itens {
		itens = append(itens, ItemVenda{
			ID:            uuid.New().String(),
			VendaID:       vendaID,
			ProdutoID:     item.ProdutoID,
			ProdutoNome:   item.ProdutoNome,
			Quantidade:    item.Quantidade,
			ValorUnitario: item.ValorUnitario,
		})
	}
	venda := NovaVenda(vendaID, cliente.Matricula, req.FormaPagamento, itens, eleg)
	venda.ClienteNome = cliente.Nome

	// 5. Inicia a transação
	tx, err := uc.vendas.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao iniciar transação: %w", err)
	}
	defer tx.Rollback()

	// 6. Baixa o estoque de cada item com decremento condicional.
	// Qualquer item sem saldo derruba a venda inteira no rollback.
	for _, item := range venda.Itens {
		if err := uc.produtos.DecrementarEstoque(ctx, tx, item.ProdutoID, item.Quantidade); err != nil {
			log.Printf("❌ [REGISTRAR VENDA] VendaID=%s | Error=%v", vendaID, err)
			return nil, err
		}
	}

	// 7. Grava cabeçalho, itens e atribuição
	if err := uc.vendas.InserirVenda(ctx, tx, venda); err != nil {
		return nil, err
	}
	for i := range venda.Itens {
		if err := uc.vendas.InserirItem(ctx, tx, &venda.Itens[i]); err != nil {
			return nil, err
		}
	}
	atribuicao := &VendedorVenda{VendedorMatricula: vendedor.Matricula, VendaID: vendaID}
	if err := uc.vendas.InserirAtribuicao(ctx, tx, atribuicao); err != nil {
		return nil, err
	}

	// 8. Commit da transação
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("erro ao comitar venda: %w", err)
	}

	// carrinho só é consumido depois do commit
	uc.carrinhos.Descartar(req.CarrinhoID)

	if uc.vendasRegistradas != nil {
		uc.vendasRegistradas.Add(ctx, 1)
	}
	log.Printf("✅ [REGISTRAR VENDA] Success: VendaID=%s | Total=%s", vendaID, venda.ValorTotal.StringFixed(2))
	return venda, nil
}

// AutorizarVenda move uma venda de PENDENTE para AUTORIZADA usando
// Lock Pessimista, carimbando o momento da autorização na atribuição
func (uc *VendaUseCase) AutorizarVenda(ctx context.Context, vendaID string) (*Venda, error) {
	ctx, span := uc.tracer.Start(ctx, "VendaUseCase.AutorizarVenda")
	defer span.End()

	log.Printf("➡️ [AUTORIZAR VENDA] VendaID: %s", vendaID)

	// 1. Inicia a transação
	tx, err := uc.vendas.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao iniciar transação: %w", err)
	}
	defer tx.Rollback()

	// 2. Obtém a venda com LOCK PESSIMISTA (SELECT FOR UPDATE)
	// Isso bloqueia a linha no banco até o Commit ou Rollback
	venda, err := uc.vendas.BuscarVendaForUpdate(ctx, tx, vendaID)
	if err != nil {
		log.Printf("❌ AUTORIZAR FAILED: BuscarVendaForUpdate | VendaID=%s | Error=%v", vendaID, err)
		return nil, err
	}

	// 3. Regra de negócio: só venda PENDENTE pode ser autorizada
	if err := venda.Autorizar(); err != nil {
		log.Printf("❌ AUTORIZAR FAILED: status %s | VendaID=%s", venda.Status, vendaID)
		return nil, err
	}

	// 4. Grava status e carimbo de autorização
	if err := uc.vendas.AtualizarStatus(ctx, tx, vendaID, venda.Status); err != nil {
		return nil, err
	}
	if err := uc.vendas.CarimbarAutorizacao(ctx, tx, vendaID, time.Now()); err != nil {
		return nil, err
	}

	// 5. Commit da transação
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("erro ao comitar autorização: %w", err)
	}

	log.Printf("✅ [AUTORIZAR VENDA] Success: VendaID=%s", vendaID)
	return venda, nil
}

// CancelarVenda move uma venda de PENDENTE para CANCELADA. O estoque
// baixado no registro não volta: reposição é ajuste manual de estoque.
func (uc *VendaUseCase) CancelarVenda(ctx context.Context, vendaID string) (*Venda, error) {
	ctx, span := uc.tracer.Start(ctx, "VendaUseCase.CancelarVenda")
	defer span.End()

	log.Printf("↩️ [CANCELAR VENDA] VendaID: %s", vendaID)

	// 1. Inicia a transação
	tx, err := uc.vendas.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao iniciar transação: %w", err)
	}
	defer tx.Rollback()

	// 2. Obtém a venda com LOCK PESSIMISTA (SELECT FOR UPDATE)
	venda, err := uc.vendas.BuscarVendaForUpdate(ctx, tx, vendaID)
	if err != nil {
		log.Printf("❌ CANCELAR FAILED: BuscarVendaForUpdate | VendaID=%s | Error=%v", vendaID, err)
		return nil, err
	}

	// 3. Regra de negócio: só venda PENDENTE pode ser cancelada
	if err := venda.Cancelar(); err != nil {
		log.Printf("❌ CANCELAR FAILED: status %s | VendaID=%s", venda.Status, vendaID)
		return nil, err
	}

	// 4. Grava o novo status
	if err := uc.vendas.AtualizarStatus(ctx, tx, vendaID, venda.Status); err != nil {
		return nil, err
	}

	// 5. Commit da transação
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("erro ao comitar cancelamento: %w", err)
	}

	log.Printf("✅ [CANCELAR VENDA] Success: VendaID=%s", vendaID)
	return venda, nil
}

// ListarVendas lista vendas com filtro por período ou cliente
func (uc *VendaUseCase) ListarVendas(ctx context.Context, filtro FiltroVendas) ([]Venda, error) {
	return uc.vendas.ListarVendas(ctx, filtro)
}

// DetalharVenda retorna a venda com seus itens
func (uc *VendaUseCase) DetalharVenda(ctx context.Context, vendaID string) (*Venda, error) {
	venda, err := uc.vendas.BuscarVenda(ctx, vendaID)
	if err != nil {
		return nil, err
	}
	itens, err := uc.vendas.ItensDaVenda(ctx, vendaID)
	if err != nil {
		return nil, err
	}
	venda.Itens = itens
	return venda, nil
}

// ClienteUseCase contém a lógica de negócio do cadastro de clientes
type ClienteUseCase struct {
	clientes ClienteRepository
	vendas   VendaRepository
}

// NewClienteUseCase cria uma nova instância de ClienteUseCase
func NewClienteUseCase(clientes ClienteRepository, vendas VendaRepository) *ClienteUseCase {
	return &ClienteUseCase{clientes: clientes, vendas: vendas}
}

func validarCamposCliente(cliente *Cliente) error {
	switch {
	case !ValidarMatricula(cliente.Matricula):
		return fmt.Errorf("%w: matrícula deve ter de 6 a 20 dígitos", ErrDadosInvalidos)
	case !ValidarNome(cliente.Nome):
		return fmt.Errorf("%w: nome deve ter ao menos 3 letras", ErrDadosInvalidos)
	case !ValidarEmail(cliente.Email):
		return fmt.Errorf("%w: email inválido", ErrDadosInvalidos)
	case !ValidarTelefone(cliente.Telefone):
		return fmt.Errorf("%w: telefone deve ter 10 ou 11 dígitos", ErrDadosInvalidos)
	case !ValidarTime(cliente.Time):
		return fmt.Errorf("%w: time inválido", ErrDadosInvalidos)
	case !ValidarCidade(cliente.Cidade):
		return fmt.Errorf("%w: cidade inválida", ErrDadosInvalidos)
	}
	return nil
}

// Criar valida e insere um novo cliente
func (uc *ClienteUseCase) Criar(ctx context.Context, cliente *Cliente) error {
	cliente.Matricula = NormalizarMatricula(cliente.Matricula)
	cliente.Telefone = NormalizarTelefone(cliente.Telefone)
	if err := validarCamposCliente(cliente); err != nil {
		return err
	}

	if _, err := uc.clientes.Buscar(ctx, cliente.Matricula); err == nil {
		return ErrMatriculaEmUso
	} else if err != ErrClienteNaoEncontrado {
		return err
	}

	emUso, err := uc.clientes.EmailEmUso(ctx, cliente.Email, cliente.Matricula)
	if err != nil {
		return err
	}
	if emUso {
		return ErrEmailEmUso
	}

	if err := uc.clientes.Criar(ctx, cliente); err != nil {
		return err
	}
	log.Printf("✅ [CLIENTE] Criado: %s (%s)", cliente.Nome, cliente.Matricula)
	return nil
}

// Atualizar valida e grava um cliente existente
func (uc *ClienteUseCase) Atualizar(ctx context.Context, cliente *Cliente) error {
	cliente.Matricula = NormalizarMatricula(cliente.Matricula)
	cliente.Telefone = NormalizarTelefone(cliente.Telefone)
	if err := validarCamposCliente(cliente); err != nil {
		return err
	}

	emUso, err := uc.clientes.EmailEmUso(ctx, cliente.Email, cliente.Matricula)
	if err != nil {
		return err
	}
	if emUso {
		return ErrEmailEmUso
	}

	return uc.clientes.Atualizar(ctx, cliente)
}

// Deletar remove um cliente, exceto se houver vendas no histórico
func (uc *ClienteUseCase) Deletar(ctx context.Context, matricula string) error {
	possui, err := uc.vendas.ClientePossuiVendas(ctx, matricula)
	if err != nil {
		return err
	}
	if possui {
		return fmt.Errorf("%w: cliente possui vendas registradas", ErrRegistroEmUso)
	}
	return uc.clientes.Deletar(ctx, matricula)
}

// Buscar retorna um cliente pela matrícula
func (uc *ClienteUseCase) Buscar(ctx context.Context, matricula string) (*Cliente, error) {
	return uc.clientes.Buscar(ctx, matricula)
}

// Listar retorna os clientes, opcionalmente filtrados por nome
func (uc *ClienteUseCase) Listar(ctx context.Context, nome string) ([]Cliente, error) {
	if nome != "" {
		return uc.clientes.BuscarPorNome(ctx, nome)
	}
	return uc.clientes.Listar(ctx)
}

// ProdutoUseCase contém a lógica de negócio do catálogo de produtos
type ProdutoUseCase struct {
	produtos ProdutoRepository
	vendas   VendaRepository
}

// NewProdutoUseCase cria uma nova instância de ProdutoUseCase
func NewProdutoUseCase(produtos ProdutoRepository, vendas VendaRepository) *ProdutoUseCase {
	return &ProdutoUseCase{produtos: produtos, vendas: vendas}
}

func validarCamposProduto(produto *Produto) error {
	switch {
	case !ValidarNomeProduto(produto.Nome):
		return fmt.Errorf("%w: nome do produto deve ter de 2 a 100 caracteres", ErrDadosInvalidos)
	case !ValidarQuantidadeEstoque(produto.Quantidade):
		return fmt.Errorf("%w: quantidade em estoque não pode ser negativa", ErrDadosInvalidos)
	case !produto.Preco.IsPositive():
		return fmt.Errorf("%w: preço deve ser positivo", ErrDadosInvalidos)
	case !ValidarCidade(produto.CidadeFabricacao):
		return fmt.Errorf("%w: cidade de fabricação inválida", ErrDadosInvalidos)
	}
	return nil
}

// Criar valida e insere um novo produto
func (uc *ProdutoUseCase) Criar(ctx context.Context, produto *Produto) error {
	if err := validarCamposProduto(produto); err != nil {
		return err
	}

	emUso, err := uc.produtos.NomeEmUso(ctx, produto.Nome, produto.ID)
	if err != nil {
		return err
	}
	if emUso {
		return ErrNomeProdutoEmUso
	}

	if produto.ID == "" {
		produto.ID = uuid.New().String()
	}
	if err := uc.produtos.Criar(ctx, produto); err != nil {
		return err
	}
	log.Printf("✅ [PRODUTO] Criado: %s (%s)", produto.Nome, produto.ID)
	return nil
}

// Atualizar valida e grava um produto existente
func (uc *ProdutoUseCase) Atualizar(ctx context.Context, produto *Produto) error {
	if err := validarCamposProduto(produto); err != nil {
		return err
	}

	emUso, err := uc.produtos.NomeEmUso(ctx, produto.Nome, produto.ID)
	if err != nil {
		return err
	}
	if emUso {
		return ErrNomeProdutoEmUso
	}

	return uc.produtos.Atualizar(ctx, produto)
}

// Deletar remove um produto, exceto se houver itens de venda no histórico
func (uc *ProdutoUseCase) Deletar(ctx context.Context, id string) error {
	possui, err := uc.vendas.ProdutoPossuiVendas(ctx, id)
	if err != nil {
		return err
	}
	if possui {
		return fmt.Errorf("%w: produto aparece em vendas registradas", ErrRegistroEmUso)
	}
	return uc.produtos.Deletar(ctx, id)
}

// Buscar retorna um produto pelo ID
func (uc *ProdutoUseCase) Buscar(ctx context.Context, id string) (*Produto, error) {
	return uc.produtos.Buscar(ctx, id)
}

// Listar retorna os produtos, opcionalmente filtrados por nome
func (uc *ProdutoUseCase) Listar(ctx context.Context, nome string) ([]Produto, error) {
	if nome != "" {
		return uc.produtos.BuscarPorNome(ctx, nome)
	}
	return uc.produtos.Listar(ctx)
}

// VendedorUseCase contém a lógica de negócio do cadastro de vendedores
type VendedorUseCase struct {
	vendedores VendedorRepository
	vendas     VendaRepository
}

// NewVendedorUseCase cria uma nova instância de VendedorUseCase
func NewVendedorUseCase(vendedores VendedorRepository, vendas VendaRepository) *VendedorUseCase {
	return &VendedorUseCase{vendedores: vendedores, vendas: vendas}
}

func validarCamposVendedor(vendedor *Vendedor) error {
	switch {
	case !ValidarMatricula(vendedor.Matricula):
		return fmt.Errorf("%w: matrícula deve ter de 6 a 20 dígitos", ErrDadosInvalidos)
	case !ValidarNome(vendedor.Nome):
		return fmt.Errorf("%w: nome deve ter ao menos 3 letras", ErrDadosInvalidos)
	case !ValidarEmail(vendedor.Email):
		return fmt.Errorf("%w: email inválido", ErrDadosInvalidos)
	case !ValidarTelefone(vendedor.Telefone):
		return fmt.Errorf("%w: telefone deve ter 10 ou 11 dígitos", ErrDadosInvalidos)
	}
	return nil
}

// Criar valida e insere um novo vendedor
func (uc *VendedorUseCase) Criar(ctx context.Context, vendedor *Vendedor) error {
	vendedor.Matricula = NormalizarMatricula(vendedor.Matricula)
	vendedor.Telefone = NormalizarTelefone(vendedor.Telefone)
	if err := validarCamposVendedor(vendedor); err != nil {
		return err
	}

	if _, err := uc.vendedores.Buscar(ctx, vendedor.Matricula); err == nil {
		return ErrMatriculaEmUso
	} else if err != ErrVendedorNaoEncontrado {
		return err
	}

	emUso, err := uc.vendedores.EmailEmUso(ctx, vendedor.Email, vendedor.Matricula)
	if err != nil {
		return err
	}
	if emUso {
		return ErrEmailEmUso
	}

	if err := uc.vendedores.Criar(ctx, vendedor); err != nil {
		return err
	}
	log.Printf("✅ [VENDEDOR] Criado: %s (%s)", vendedor.Nome, vendedor.Matricula)
	return nil
}

// Atualizar valida e grava um vendedor existente
func (uc *VendedorUseCase) Atualizar(ctx context.Context, vendedor *Vendedor) error {
	vendedor.Matricula = NormalizarMatricula(vendedor.Matricula)
	vendedor.Telefone = NormalizarTelefone(vendedor.Telefone)
	if err := validarCamposVendedor(vendedor); err != nil {
		return err
	}

	emUso, err := uc.vendedores.EmailEmUso(ctx, vendedor.Email, vendedor.Matricula)
	if err != nil {
		return err
	}
	if emUso {
		return ErrEmailEmUso
	}

	return uc.vendedores.Atualizar(ctx, vendedor)
}

// Deletar remove um vendedor, exceto se houver vendas atribuídas
func (uc *VendedorUseCase) Deletar(ctx context.Context, matricula string) error {
	possui, err := uc.vendas.VendedorPossuiVendas(ctx, matricula)
	if err != nil {
		return err
	}
	if possui {
		return fmt.Errorf("%w: vendedor possui vendas atribuídas", ErrRegistroEmUso)
	}
	return uc.vendedores.Deletar(ctx, matricula)
}

// Buscar retorna um vendedor pela matrícula
func (uc *VendedorUseCase) Buscar(ctx context.Context, matricula string) (*Vendedor, error) {
	return uc.vendedores.Buscar(ctx, matricula)
}

// Listar retorna os vendedores, opcionalmente filtrados por nome
func (uc *VendedorUseCase) Listar(ctx context.Context, nome string) ([]Vendedor, error) {
	if nome != "" {
		return uc.vendedores.BuscarPorNome(ctx, nome)
	}
	return uc.vendedores.Listar(ctx)
}
