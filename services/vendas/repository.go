package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Tx interface para transações
type Tx interface {
	Commit() error
	Rollback() error
}

// PostgresTx implementa a interface Tx
type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit() error {
	return t.tx.Commit(context.Background())
}

func (t *PostgresTx) Rollback() error {
	return t.tx.Rollback(context.Background())
}

func pgTxOf(tx Tx) pgx.Tx {
	return tx.(*PostgresTx).tx
}

// ClienteRepository define as operações de persistência de clientes
type ClienteRepository interface {
	Criar(ctx context.Context, cliente *Cliente) error
	Buscar(ctx context.Context, matricula string) (*Cliente, error)
	BuscarPorNome(ctx context.Context, nome string) ([]Cliente, error)
	Listar(ctx context.Context) ([]Cliente, error)
	Atualizar(ctx context.Context, cliente *Cliente) error
	Deletar(ctx context.Context, matricula string) error
	EmailEmUso(ctx context.Context, email, ignorarMatricula string) (bool, error)

	// AvaliarElegibilidade avalia o predicado de desconto no próprio
	// banco: sócio qualifica sempre; senão vale a promoção da torcida
	// (assiste One Piece e torce para o time da casa ou nasceu na
	// cidade da atlética). Cliente inexistente não qualifica.
	AvaliarElegibilidade(ctx context.Context, matricula string) (Elegibilidade, error)
}

// ProdutoRepository define as operações de persistência de produtos e estoque
type ProdutoRepository interface {
	Criar(ctx context.Context, produto *Produto) error
	Buscar(ctx context.Context, id string) (*Produto, error)
	BuscarPorNome(ctx context.Context, nome string) ([]Produto, error)
	Listar(ctx context.Context) ([]Produto, error)
	Atualizar(ctx context.Context, produto *Produto) error
	Deletar(ctx context.Context, id string) error
	NomeEmUso(ctx context.Context, nome, ignorarID string) (bool, error)

	// DecrementarEstoque decrementa o estoque de forma condicional:
	// só atualiza se o saldo resultante for não-negativo. Zero linhas
	// afetadas significa estoque insuficiente.
	DecrementarEstoque(ctx context.Context, tx Tx, produtoID string, quantidade int) error
}

// VendedorRepository define as operações de persistência de vendedores
type VendedorRepository interface {
	Criar(ctx context.Context, vendedor *Vendedor) error
	Buscar(ctx context.Context, matricula string) (*Vendedor, error)
	BuscarPorNome(ctx context.Context, nome string) ([]Vendedor, error)
	Listar(ctx context.Context) ([]Vendedor, error)
	Atualizar(ctx context.Context, vendedor *Vendedor) error
	Deletar(ctx context.Context, matricula string) error
	EmailEmUso(ctx context.Context, email, ignorarMatricula string) (bool, error)
}

// FiltroVendas parametriza a listagem de vendas (mesmos filtros do
// sistema antigo: período de até um ano ou trecho do nome do cliente)
type FiltroVendas struct {
	Inicio  *time.Time
	Fim     *time.Time
	Cliente string
	Limite  int
}

// VendaRepository define as operações de persistência de vendas.
// Toda escrita de venda acontece dentro de uma transação aberta por
// BeginTx: cabeçalho, itens, atribuição e baixa de estoque são uma
// unidade atômica.
type VendaRepository interface {
	BeginTx(ctx context.Context) (Tx, error)
	InserirVenda(ctx context.Context, tx Tx, venda *Venda) error
	InserirItem(ctx context.Context, tx Tx, item *ItemVenda) error
	InserirAtribuicao(ctx context.Context, tx Tx, atribuicao *VendedorVenda) error
	BuscarVenda(ctx context.Context, id string) (*Venda, error)
	BuscarVendaForUpdate(ctx context.Context, tx Tx, id string) (*Venda, error)
	AtualizarStatus(ctx context.Context, tx Tx, id string, status VendaStatus) error
	CarimbarAutorizacao(ctx context.Context, tx Tx, vendaID string, quando time.Time) error
	ListarVendas(ctx context.Context, filtro FiltroVendas) ([]Venda, error)
	ItensDaVenda(ctx context.Context, vendaID string) ([]ItemVenda, error)
	ClientePossuiVendas(ctx context.Context, matricula string) (bool, error)
	ProdutoPossuiVendas(ctx context.Context, produtoID string) (bool, error)
	VendedorPossuiVendas(ctx context.Context, matricula string) (bool, error)
}

// PostgresClienteRepository implementa ClienteRepository usando PostgreSQL
type PostgresClienteRepository struct {
	db          *pgxpool.Pool
	promoTime   string
	promoCidade string
}

// NewClienteRepository cria uma nova instância de PostgresClienteRepository.
// promoTime e promoCidade configuram a promoção da torcida.
func NewClienteRepository(db *pgxpool.Pool, promoTime, promoCidade string) ClienteRepository {
	return &PostgresClienteRepository{
		db:          db,
		promoTime:   promoTime,
		promoCidade: promoCidade,
	}
}

const colunasCliente = "matricula, nome, email, telefone, eh_socio, time, cidade, assiste_op, criado_em"

func scanCliente(row pgx.Row) (*Cliente, error) {
	var c Cliente
	err := row.Scan(&c.Matricula, &c.Nome, &c.Email, &c.Telefone,
		&c.EhSocio, &c.Time, &c.Cidade, &c.AssisteOP, &c.CriadoEm)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Criar insere um novo cliente
func (r *PostgresClienteRepository) Criar(ctx context.Context, cliente *Cliente) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO clientes (matricula, nome, email, telefone, eh_socio, time, cidade, assiste_op)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, cliente.Matricula, cliente.Nome, cliente.Email, cliente.Telefone,
		cliente.EhSocio, cliente.Time, cliente.Cidade, cliente.AssisteOP)
	if err != nil {
		return fmt.Errorf("failed to create cliente: %w", err)
	}
	return nil
}

// Buscar busca um cliente pela matrícula
func (r *PostgresClienteRepository) Buscar(ctx context.Context, matricula string) (*Cliente, error) {
	cliente, err := scanCliente(r.db.QueryRow(ctx,
		"SELECT "+colunasCliente+" FROM clientes WHERE matricula = $1", matricula))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrClienteNaoEncontrado
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cliente: %w", err)
	}
	return cliente, nil
}

// BuscarPorNome busca clientes por trecho do nome (case-insensitive)
func (r *PostgresClienteRepository) BuscarPorNome(ctx context.Context, nome string) ([]Cliente, error) {
	return r.listar(ctx,
		"SELECT "+colunasCliente+" FROM clientes WHERE nome ILIKE $1 ORDER BY nome", "%"+nome+"%")
}

// Listar retorna todos os clientes ordenados por nome
func (r *PostgresClienteRepository) Listar(ctx context.Context) ([]Cliente, error) {
	return r.listar(ctx, "SELECT "+colunasCliente+" FROM clientes ORDER BY nome")
}

func (r *PostgresClienteRepository) listar(ctx context.Context, query string, args ...any) ([]Cliente, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clientes: %w", err)
	}
	defer rows.Close()

	var clientes []Cliente
	for rows.Next() {
		cliente, err := scanCliente(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cliente: %w", err)
		}
		clientes = append(clientes, *cliente)
	}
	return clientes, rows.Err()
}

// Atualizar grava nome, email, telefone, status de sócio, time, cidade e preferência
func (r *PostgresClienteRepository) Atualizar(ctx context.Context, cliente *Cliente) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE clientes
		SET nome = $1, email = $2, telefone = $3, eh_socio = $4,
		    time = $5, cidade = $6, assiste_op = $7
		WHERE matricula = $8
	`, cliente.Nome, cliente.Email, cliente.Telefone, cliente.EhSocio,
		cliente.Time, cliente.Cidade, cliente.AssisteOP, cliente.Matricula)
	if err != nil {
		return fmt.Errorf("failed to update cliente: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClienteNaoEncontrado
	}
	return nil
}

// Deletar remove um cliente sem vendas associadas
func (r *PostgresClienteRepository) Deletar(ctx context.Context, matricula string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM clientes WHERE matricula = $1", matricula)
	if err != nil {
		return fmt.Errorf("failed to delete cliente: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClienteNaoEncontrado
	}
	return nil
}

// EmailEmUso verifica unicidade de email, ignorando a própria matrícula
func (r *PostgresClienteRepository) EmailEmUso(ctx context.Context, email, ignorarMatricula string) (bool, error) {
	var emUso bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM clientes WHERE email = $1 AND matricula != $2)",
		email, ignorarMatricula).Scan(&emUso)
	return emUso, err
}

// AvaliarElegibilidade avalia o predicado de desconto no banco
func (r *PostgresClienteRepository) AvaliarElegibilidade(ctx context.Context, matricula string) (Elegibilidade, error) {
	var motivo string
	err := r.db.QueryRow(ctx, `
		SELECT CASE
			WHEN eh_socio THEN 'desconto de sócio'
			WHEN assiste_op AND (time ILIKE $2 OR cidade ILIKE $3) THEN 'promoção da torcida'
			ELSE ''
		END
		FROM clientes
		WHERE matricula = $1
	`, matricula, r.promoTime, r.promoCidade).Scan(&motivo)

	if errors.Is(err, pgx.ErrNoRows) {
		// cliente desconhecido nunca qualifica, mas não é erro
		return Elegibilidade{}, nil
	}
	if err != nil {
		return Elegibilidade{}, fmt.Errorf("failed to evaluate elegibilidade: %w", err)
	}
	return Elegibilidade{Qualifica: motivo != "", Motivo: motivo}, nil
}

// PostgresProdutoRepository implementa ProdutoRepository usando PostgreSQL
type PostgresProdutoRepository struct {
	db *pgxpool.Pool
}

// NewProdutoRepository cria uma nova instância de PostgresProdutoRepository
func NewProdutoRepository(db *pgxpool.Pool) ProdutoRepository {
	return &PostgresProdutoRepository{db: db}
}

const colunasProduto = "id, nome, quantidade, preco, cidade_fabricacao, categoria, criado_em, atualizado_em"

func scanProduto(row pgx.Row) (*Produto, error) {
	var p Produto
	err := row.Scan(&p.ID, &p.Nome, &p.Quantidade, &p.Preco,
		&p.CidadeFabricacao, &p.Categoria, &p.CriadoEm, &p.AtualizadoEm)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Criar insere um novo produto
func (r *PostgresProdutoRepository) Criar(ctx context.Context, produto *Produto) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO produtos (id, nome, quantidade, preco, cidade_fabricacao, categoria)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, produto.ID, produto.Nome, produto.Quantidade, produto.Preco,
		produto.CidadeFabricacao, produto.Categoria)
	if err != nil {
		return fmt.Errorf("failed to create produto: %w", err)
	}
	return nil
}

// Buscar busca um produto pelo ID
func (r *PostgresProdutoRepository) Buscar(ctx context.Context, id string) (*Produto, error) {
	produto, err := scanProduto(r.db.QueryRow(ctx,
		"SELECT "+colunasProduto+" FROM produtos WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProdutoNaoEncontrado
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get produto: %w", err)
	}
	return produto, nil
}

// BuscarPorNome busca produtos por trecho do nome (case-insensitive)
func (r *PostgresProdutoRepository) BuscarPorNome(ctx context.Context, nome string) ([]Produto, error) {
	return r.listar(ctx,
		"SELECT "+colunasProduto+" FROM produtos WHERE nome ILIKE $1 ORDER BY nome", "%"+nome+"%")
}

// Listar retorna todos os produtos ordenados por nome
func (r *PostgresProdutoRepository) Listar(ctx context.Context) ([]Produto, error) {
	return r.listar(ctx, "SELECT "+colunasProduto+" FROM produtos ORDER BY nome")
}

func (r *PostgresProdutoRepository) listar(ctx context.Context, query string, args ...any) ([]Produto, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list produtos: %w", err)
	}
	defer rows.Close()

	var produtos []Produto
	for rows.Next() {
		produto, err := scanProduto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan produto: %w", err)
		}
		produtos = append(produtos, *produto)
	}
	return produtos, rows.Err()
}

// Atualizar grava nome, quantidade, preço, cidade de fabricação e categoria
func (r *PostgresProdutoRepository) Atualizar(ctx context.Context, produto *Produto) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE produtos
		SET nome = $1, quantidade = $2, preco = $3,
		    cidade_fabricacao = $4, categoria = $5, atualizado_em = NOW()
		WHERE id = $6
	`, produto.Nome, produto.Quantidade, produto.Preco,
		produto.CidadeFabricacao, produto.Categoria, produto.ID)
	if err != nil {
		return fmt.Errorf("failed to update produto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProdutoNaoEncontrado
	}
	return nil
}

// Deletar remove um produto sem itens de venda associados
func (r *PostgresProdutoRepository) Deletar(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM produtos WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete produto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProdutoNaoEncontrado
	}
	return nil
}

// NomeEmUso verifica unicidade de nome (case-insensitive), ignorando o próprio id
func (r *PostgresProdutoRepository) NomeEmUso(ctx context.Context, nome, ignorarID string) (bool, error) {
	var emUso bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM produtos WHERE nome ILIKE $1 AND id != $2)",
		nome, ignorarID).Scan(&emUso)
	return emUso, err
}

// DecrementarEstoque decrementa o estoque dentro da transação da venda.
// O WHERE condicional fecha a corrida entre duas vendas concorrentes:
// a checagem do carrinho é só consultiva, a garantia real é esta.
func (r *PostgresProdutoRepository) DecrementarEstoque(ctx context.Context, tx Tx, produtoID string, quantidade int) error {
	pgTx := pgTxOf(tx)

	tag, err := pgTx.Exec(ctx, `
		UPDATE produtos
		SET quantidade = quantidade - $1,
		    atualizado_em = NOW()
		WHERE id = $2 AND quantidade >= $1
	`, quantidade, produtoID)
	if err != nil {
		return fmt.Errorf("failed to decrease estoque: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var disponivel int
		err := pgTx.QueryRow(ctx, "SELECT quantidade FROM produtos WHERE id = $1", produtoID).Scan(&disponivel)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: produto %s", ErrProdutoNaoEncontrado, produtoID)
		}
		if err != nil {
			return fmt.Errorf("failed to read estoque: %w", err)
		}
		return fmt.Errorf("%w para o produto %s: solicitado %d, disponível %d",
			ErrEstoqueInsuficiente, produtoID, quantidade, disponivel)
	}
	return nil
}

// PostgresVendedorRepository implementa VendedorRepository usando PostgreSQL
type PostgresVendedorRepository struct {
	db *pgxpool.Pool
}

// NewVendedorRepository cria uma nova instância de PostgresVendedorRepository
func NewVendedorRepository(db *pgxpool.Pool) VendedorRepository {
	return &PostgresVendedorRepository{db: db}
}

const colunasVendedor = "matricula, nome, email, telefone, ativo"

func scanVendedor(row pgx.Row) (*Vendedor, error) {
	var v Vendedor
	err := row.Scan(&v.Matricula, &v.Nome, &v.Email, &v.Telefone, &v.Ativo)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Criar insere um novo vendedor
func (r *PostgresVendedorRepository) Criar(ctx context.Context, vendedor *Vendedor) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO vendedores (matricula, nome, email, telefone, ativo)
		VALUES ($1, $2, $3, $4, $5)
	`, vendedor.Matricula, vendedor.Nome, vendedor.Email, vendedor.Telefone, vendedor.Ativo)
	if err != nil {
		return fmt.Errorf("failed to create vendedor: %w", err)
	}
	return nil
}

// Buscar busca um vendedor pela matrícula
func (r *PostgresVendedorRepository) Buscar(ctx context.Context, matricula string) (*Vendedor, error) {
	vendedor, err := scanVendedor(r.db.QueryRow(ctx,
		"SELECT "+colunasVendedor+" FROM vendedores WHERE matricula = $1", matricula))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrVendedorNaoEncontrado
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vendedor: %w", err)
	}
	return vendedor, nil
}

// BuscarPorNome busca vendedores por trecho do nome (case-insensitive)
func (r *PostgresVendedorRepository) BuscarPorNome(ctx context.Context, nome string) ([]Vendedor, error) {
	return r.listar(ctx,
		"SELECT "+colunasVendedor+" FROM vendedores WHERE nome ILIKE $1 ORDER BY nome", "%"+nome+"%")
}

// Listar retorna todos os vendedores ordenados por nome
func (r *PostgresVendedorRepository) Listar(ctx context.Context) ([]Vendedor, error) {
	return r.listar(ctx, "SELECT "+colunasVendedor+" FROM vendedores ORDER BY nome")
}

func (r *PostgresVendedorRepository) listar(ctx context.Context, query string, args ...any) ([]Vendedor, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendedores: %w", err)
	}
	defer rows.Close()

	var vendedores []Vendedor
	for rows.Next() {
		vendedor, err := scanVendedor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vendedor: %w", err)
		}
		vendedores = append(vendedores, *vendedor)
	}
	return vendedores, rows.Err()
}

// Atualizar grava nome, email, telefone e status de atividade
func (r *PostgresVendedorRepository) Atualizar(ctx context.Context, vendedor *Vendedor) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE vendedores
		SET nome = $1, email = $2, telefone = $3, ativo = $4
		WHERE matricula = $5
	`, vendedor.Nome, vendedor.Email, vendedor.Telefone, vendedor.Ativo, vendedor.Matricula)
	if err != nil {
		return fmt.Errorf("failed to update vendedor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVendedorNaoEncontrado
	}
	return nil
}

// Deletar remove um vendedor sem vendas atribuídas
func (r *PostgresVendedorRepository) Deletar(ctx context.Context, matricula string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM vendedores WHERE matricula = $1", matricula)
	if err != nil {
		return fmt.Errorf("failed to delete vendedor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVendedorNaoEncontrado
	}
	return nil
}

// EmailEmUso verifica unicidade de email, ignorando a própria matrícula
func (r *PostgresVendedorRepository) EmailEmUso(ctx context.Context, email, ignorarMatricula string) (bool, error) {
	var emUso bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM vendedores WHERE email = $1 AND matricula != $2)",
		email, ignorarMatricula).Scan(&emUso)
	return emUso, err
}

// PostgresVendaRepository implementa VendaRepository usando PostgreSQL
type PostgresVendaRepository struct {
	db *pgxpool.Pool
}

// NewVendaRepository cria uma nova instância de PostgresVendaRepository
func NewVendaRepository(db *pgxpool.Pool) VendaRepository {
	return &PostgresVendaRepository{db: db}
}

// BeginTx inicia uma nova transação
func (r *PostgresVendaRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &PostgresTx{tx: tx}, nil
}

// InserirVenda insere o cabeçalho da venda
func (r *PostgresVendaRepository) InserirVenda(ctx context.Context, tx Tx, venda *Venda) error {
	var motivo *string
	if venda.DescontoAplicado {
		motivo = &venda.MotivoDesconto
	}
	desconto := decimal.NullDecimal{Decimal: venda.ValorDesconto, Valid: venda.DescontoAplicado}

	_, err := pgTxOf(tx).Exec(ctx, `
		INSERT INTO vendas (id, cliente_matricula, valor_total, forma_pagamento,
		                    data_venda, status, desconto_aplicado, motivo_desconto, valor_desconto)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, venda.ID, venda.ClienteMatricula, venda.ValorTotal, venda.FormaPagamento,
		venda.DataVenda, venda.Status, venda.DescontoAplicado, motivo, desconto)
	if err != nil {
		return fmt.Errorf("failed to insert venda: %w", err)
	}
	return nil
}

// InserirItem insere uma linha da venda
func (r *PostgresVendaRepository) InserirItem(ctx context.Context, tx Tx, item *ItemVenda) error {
	_, err := pgTxOf(tx).Exec(ctx, `
		INSERT INTO itens_venda (id, venda_id, produto_id, quantidade, valor_unitario)
		VALUES ($1, $2, $3, $4, $5)
	`, item.ID, item.VendaID, item.ProdutoID, item.Quantidade, item.ValorUnitario)
	if err != nil {
		return fmt.Errorf("failed to insert item de venda: %w", err)
	}
	return nil
}

// InserirAtribuicao insere a linha de atribuição vendedor-venda
func (r *PostgresVendaRepository) InserirAtribuicao(ctx context.Context, tx Tx, atribuicao *VendedorVenda) error {
	_, err := pgTxOf(tx).Exec(ctx, `
		INSERT INTO vendedor_vendas (vendedor_matricula, venda_id)
		VALUES ($1, $2)
	`, atribuicao.VendedorMatricula, atribuicao.VendaID)
	if err != nil {
		return fmt.Errorf("failed to insert atribuição: %w", err)
	}
	return nil
}

const queryVenda = `
	SELECT v.id, v.cliente_matricula, c.nome, v.valor_total, v.forma_pagamento,
	       v.data_venda, v.status, v.desconto_aplicado, v.motivo_desconto, v.valor_desconto
	FROM vendas v
	JOIN clientes c ON v.cliente_matricula = c.matricula
`

func scanVenda(row pgx.Row) (*Venda, error) {
	var v Venda
	var motivo *string
	var desconto decimal.NullDecimal
	err := row.Scan(&v.ID, &v.ClienteMatricula, &v.ClienteNome, &v.ValorTotal,
		&v.FormaPagamento, &v.DataVenda, &v.Status, &v.DescontoAplicado, &motivo, &desconto)
	if err != nil {
		return nil, err
	}
	if motivo != nil {
		v.MotivoDesconto = *motivo
	}
	if desconto.Valid {
		v.ValorDesconto = desconto.Decimal
	} else {
		v.ValorDesconto = decimal.Zero
	}
	return &v, nil
}

// BuscarVenda busca o cabeçalho de uma venda pelo ID
func (r *PostgresVendaRepository) BuscarVenda(ctx context.Context, id string) (*Venda, error) {
	venda, err := scanVenda(r.db.QueryRow(ctx, queryVenda+" WHERE v.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrVendaNaoEncontrada
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get venda: %w", err)
	}
	return venda, nil
}

// BuscarVendaForUpdate obtém a venda com lock pessimista (FOR UPDATE).
// A linha fica bloqueada até o Commit ou Rollback, serializando
// autorizações concorrentes da mesma venda.
func (r *PostgresVendaRepository) BuscarVendaForUpdate(ctx context.Context, tx Tx, id string) (*Venda, error) {
	venda, err := scanVenda(pgTxOf(tx).QueryRow(ctx, queryVenda+" WHERE v.id = $1 FOR UPDATE OF v", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrVendaNaoEncontrada
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get venda with lock: %w", err)
	}
	return venda, nil
}

// AtualizarStatus grava o novo status de uma venda
func (r *PostgresVendaRepository) AtualizarStatus(ctx context.Context, tx Tx, id string, status VendaStatus) error {
	tag, err := pgTxOf(tx).Exec(ctx,
		"UPDATE vendas SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVendaNaoEncontrada
	}
	return nil
}

// CarimbarAutorizacao grava o instante da autorização na atribuição.
// Zero linhas afetadas significa venda sem atribuição de vendedor: o
// erro derruba a transação de autorização inteira.
func (r *PostgresVendaRepository) CarimbarAutorizacao(ctx context.Context, tx Tx, vendaID string, quando time.Time) error {
	tag, err := pgTxOf(tx).Exec(ctx,
		"UPDATE vendedor_vendas SET autorizada_em = $1 WHERE venda_id = $2", quando, vendaID)
	if err != nil {
		return fmt.Errorf("failed to stamp autorização: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to stamp autorização: venda %s has no atribuição", vendaID)
	}
	return nil
}

// ListarVendas lista vendas recentes, com filtro opcional por período
// ou por trecho do nome do cliente
func (r *PostgresVendaRepository) ListarVendas(ctx context.Context, filtro FiltroVendas) ([]Venda, error) {
	query := queryVenda
	args := []any{}

	switch {
	case filtro.Inicio != nil && filtro.Fim != nil:
		query += " WHERE v.data_venda BETWEEN $1 AND $2"
		args = append(args, *filtro.Inicio, *filtro.Fim)
	case filtro.Cliente != "":
		query += " WHERE c.nome ILIKE $1"
		args = append(args, "%"+filtro.Cliente+"%")
	}

	limite := filtro.Limite
	if limite <= 0 {
		limite = 1000
	}
	query += fmt.Sprintf(" ORDER BY v.data_venda DESC LIMIT %d", limite)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendas: %w", err)
	}
	defer rows.Close()

	var vendas []Venda
	for rows.Next() {
		venda, err := scanVenda(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan venda: %w", err)
		}
		vendas = append(vendas, *venda)
	}
	return vendas, rows.Err()
}

// ItensDaVenda retorna as linhas de uma venda com o nome do produto
func (r *PostgresVendaRepository) ItensDaVenda(ctx context.Context, vendaID string) ([]ItemVenda, error) {
	rows, err := r.db.Query(ctx, `
		SELECT iv.id, iv.venda_id, iv.produto_id, p.nome, iv.quantidade, iv.valor_unitario
		FROM itens_venda iv
		JOIN produtos p ON iv.produto_id = p.id
		WHERE iv.venda_id = $1
		ORDER BY iv.id
	`, vendaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list itens da venda: %w", err)
	}
	defer rows.Close()

	var itens []ItemVenda
	for rows.Next() {
		var item ItemVenda
		if err := rows.Scan(&item.ID, &item.VendaID, &item.ProdutoID,
			&item.ProdutoNome, &item.Quantidade, &item.ValorUnitario); err != nil {
			return nil, fmt.Errorf("failed to scan item de venda: %w", err)
		}
		itens = append(itens, item)
	}
	return itens, rows.Err()
}

// ClientePossuiVendas verifica se o cliente é referenciado por alguma venda
func (r *PostgresVendaRepository) ClientePossuiVendas(ctx context.Context, matricula string) (bool, error) {
	var possui bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM vendas WHERE cliente_matricula = $1)", matricula).Scan(&possui)
	return possui, err
}

// ProdutoPossuiVendas verifica se o produto é referenciado por algum item de venda
func (r *PostgresVendaRepository) ProdutoPossuiVendas(ctx context.Context, produtoID string) (bool, error) {
	var possui bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM itens_venda WHERE produto_id = $1)", produtoID).Scan(&possui)
	return possui, err
}

// VendedorPossuiVendas verifica se o vendedor é referenciado por alguma atribuição
func (r *PostgresVendaRepository) VendedorPossuiVendas(ctx context.Context, matricula string) (bool, error) {
	var possui bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM vendedor_vendas WHERE vendedor_matricula = $1)", matricula).Scan(&possui)
	return possui, err
}
