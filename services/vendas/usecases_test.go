package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

type vendaFixture struct {
	vendas     *MockVendaRepository
	produtos   *MockProdutoRepository
	clientes   *MockClienteRepository
	vendedores *MockVendedorRepository
	carrinhos  *CarrinhoStore
	tx         *MockTx
	useCase    *VendaUseCase
}

func novoVendaFixture() *vendaFixture {
	f := &vendaFixture{
		vendas:     new(MockVendaRepository),
		produtos:   new(MockProdutoRepository),
		clientes:   new(MockClienteRepository),
		vendedores: new(MockVendedorRepository),
		carrinhos:  NewCarrinhoStore(),
		tx:         new(MockTx),
	}
	f.useCase = NewVendaUseCase(f.vendas, f.produtos, f.clientes, f.vendedores,
		NewElegibilidadeUseCase(f.clientes), f.carrinhos,
		noop.NewTracerProvider().Tracer("test"), nil)
	return f
}

// carrinhoComItens abre um carrinho com 2x10.00 + 1x5.00 = 25.00
func (f *vendaFixture) carrinhoComItens() *Carrinho {
	carrinho := f.carrinhos.Criar()
	f.carrinhos.Adicionar(carrinho.ID, ItemCarrinho{ProdutoID: "produto-1", ProdutoNome: "Camiseta",
		Quantidade: 2, ValorUnitario: decimal.RequireFromString("10.00")})
	carrinho, _ = f.carrinhos.Adicionar(carrinho.ID, ItemCarrinho{ProdutoID: "produto-2", ProdutoNome: "Tirante",
		Quantidade: 1, ValorUnitario: decimal.RequireFromString("5.00")})
	return carrinho
}

func clienteSocio() *Cliente {
	return &Cliente{
		Matricula: "202312345",
		Nome:      "Ana Silva",
		Email:     "ana@usp.br",
		EhSocio:   true,
		Time:      "Flamengo",
		Cidade:    "Santos",
	}
}

func vendedorAtivo() *Vendedor {
	return &Vendedor{Matricula: "202399999", Nome: "Bruno Costa", Ativo: true}
}

func TestRegistrarVendaComDescontoDeSocio(t *testing.T) {
	// Arrange
	f := novoVendaFixture()
	ctx := context.Background()
	carrinho := f.carrinhoComItens()

	f.clientes.On("Buscar", mock.Anything, "202312345").Return(clienteSocio(), nil)
	f.vendedores.On("Buscar", mock.Anything, "202399999").Return(vendedorAtivo(), nil)
	f.clientes.On("AvaliarElegibilidade", mock.Anything, "202312345").
		Return(Elegibilidade{Qualifica: true, Motivo: "desconto de sócio"}, nil)

	f.vendas.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.tx.On("Rollback").Return(nil)
	f.tx.On("Commit").Return(nil)
	f.produtos.On("DecrementarEstoque", mock.Anything, f.tx, "produto-1", 2).Return(nil)
	f.produtos.On("DecrementarEstoque", mock.Anything, f.tx, "produto-2", 1).Return(nil)
	f.vendas.On("InserirVenda", mock.Anything, f.tx, mock.AnythingOfType("*main.Venda")).Return(nil)
	f.vendas.On("InserirItem", mock.Anything, f.tx, mock.AnythingOfType("*main.ItemVenda")).Return(nil)
	f.vendas.On("InserirAtribuicao", mock.Anything, f.tx, mock.AnythingOfType("*main.VendedorVenda")).Return(nil)

	// Act
	venda, err := f.useCase.RegistrarVenda(ctx, RegistrarVendaRequest{
		CarrinhoID:        carrinho.ID,
		ClienteMatricula:  "202312345",
		VendedorMatricula: "202399999",
		FormaPagamento:    FormaPagamentoPix,
	})

	// Assert: 25.00 com 10% de desconto = 22.50
	assert.NoError(t, err)
	assert.Equal(t, VendaStatusPendente, venda.Status)
	assert.True(t, venda.DescontoAplicado)
	assert.Equal(t, "desconto de sócio", venda.MotivoDesconto)
	assert.True(t, venda.ValorDesconto.Equal(decimal.RequireFromString("2.50")),
		"Expected desconto 2.50, got %s", venda.ValorDesconto)
	assert.True(t, venda.ValorTotal.Equal(decimal.RequireFromString("22.50")),
		"Expected total 22.50, got %s", venda.ValorTotal)
	assert.NoError(t, venda.ValidarTotais())

	// carrinho foi consumido depois do commit
	_, buscarErr := f.carrinhos.Buscar(carrinho.ID)
	assert.ErrorIs(t, buscarErr, ErrCarrinhoNaoEncontrado)

	f.tx.AssertCalled(t, "Commit")
	f.vendas.AssertNumberOfCalls(t, "InserirItem", 2)
	f.vendas.AssertExpectations(t)
	f.produtos.AssertExpectations(t)
}

func TestRegistrarVendaSemDesconto(t *testing.T) {
	// Arrange
	f := novoVendaFixture()
	ctx := context.Background()
	carrinho := f.carrinhoComItens()

	naoSocio := clienteSocio()
	naoSocio.EhSocio = false

	f.clientes.On("Buscar", mock.Anything, "202312345").Return(naoSocio, nil)
	f.vendedores.On("Buscar", mock.Anything, "202399999").Return(vendedorAtivo(), nil)
	f.clientes.On("AvaliarElegibilidade", mock.Anything, "202312345").Return(Elegibilidade{}, nil)

	f.vendas.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.tx.On("Rollback").Return(nil)
	f.tx.On("Commit").Return(nil)
	f.produtos.On("DecrementarEstoque", mock.Anything, f.tx, mock.Anything, mock.Anything).Return(nil)
	f.vendas.On("InserirVenda", mock.Anything, f.tx, mock.AnythingOfType("*main.Venda")).Return(nil)
	f.vendas.On("InserirItem", mock.Anything, f.tx, mock.AnythingOfType("*main.ItemVenda")).Return(nil)
	f.vendas.On("InserirAtribuicao", mock.Anything, f.tx, mock.AnythingOfType("*main.VendedorVenda")).Return(nil)

	// Act
	venda, err := f.useCase.RegistrarVenda(ctx, RegistrarVendaRequest{
		CarrinhoID:        carrinho.ID,
		ClienteMatricula:  "202312345",
		VendedorMatricula: "202399999",
		FormaPagamento:    FormaPagamentoDinheiro,
	})

	// Assert
	assert.NoError(t, err)
	assert.False(t, venda.DescontoAplicado)
	assert.True(t, venda.ValorTotal.Equal(decimal.RequireFromString("25.00")),
		"Expected total 25.00, got %s", venda.ValorTotal)
}

func TestRegistrarVendaDegradaSemElegibilidade(t *testing.T) {
	// Arrange: consulta de elegibilidade falhando não pode travar o caixa
	f := novoVendaFixture()
	ctx := context.Background()
	carrinho := f.carrinhoComItens()

	f.clientes.On("Buscar", mock.Anything, "202312345").Return(clienteSocio(), nil)
	f.vendedores.On("Buscar", mock.Anything, "202399999").Return(vendedorAtivo(), nil)
	f.clientes.On("AvaliarElegibilidade", mock.Anything, "202312345").
		Return(Elegibilidade{}, errors.New("connection reset"))

	f.vendas.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.tx.On("Rollback").Return(nil)
	f.tx.On("Commit").Return(nil)
	f.produtos.On("DecrementarEstoque", mock.Anything, f.tx, mock.Anything, mock.Anything).Return(nil)
	f.vendas.On("InserirVenda", mock.Anything, f.tx, mock.AnythingOfType("*main.Venda")).Return(nil)
	f.vendas.On("InserirItem", mock.Anything, f.tx, mock.AnythingOfType("*main.ItemVenda")).Return(nil)
	f.vendas.On("InserirAtribuicao", mock.Anything, f.tx, mock.AnythingOfType("*main.VendedorVenda")).Return(nil)

	// Act
	venda, err := f.useCase.RegistrarVenda(ctx, RegistrarVendaRequest{
		CarrinhoID:        carrinho.ID,
		ClienteMatricula:  "202312345",
		VendedorMatricula: "202399999",
		FormaPagamento:    FormaPagamentoPix,
	})

	// Assert: venda sai sem desconto, nunca com erro
	assert.NoError(t, err)
	assert.False(t, venda.DescontoAplicado)
	assert.True(t, venda.ValorTotal.Equal(decimal.RequireFromString("25.00")))
}

func TestRegistrarVendaEstoqueInsuficienteDerrubaTudo(t *testing.T) {
	// Arrange
	f := novoVendaFixture()
	ctx := context.Background()
	carrinho := f.carrinhoComItens()

	f.clientes.On("Buscar", mock.Anything, "202312345").Return(clienteSocio(), nil)
	f.vendedores.On("Buscar", mock.Anything, "202399999").Return(vendedorAtivo(), nil)
	f.clientes.On("AvaliarElegibilidade", mock.Anything, "202312345").Return(Elegibilidade{}, nil)

	f.vendas.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.tx.On("Rollback").Return(nil)
	f.produtos.On("DecrementarEstoque", mock.Anything, f.tx, "produto-1", 2).Return(nil)
	f.produtos.On("DecrementarEstoque", mock.Anything, f.tx, "produto-2", 1).
		Return(fmt.Errorf("%w para o produto produto-2: solicitado 1, disponível 0", ErrEstoqueInsuficiente))

	// Act
	venda, err := f.useCase.RegistrarVenda(ctx, RegistrarVendaRequest{
		CarrinhoID:        carrinho.ID,
		ClienteMatricula:  "202312345",
		VendedorMatricula: "202399999",
		FormaPagamento:    FormaPagamentoPix,
	})

	// Assert: nada commitado, carrinho preservado para nova tentativa
	assert.Nil(t, venda)
	assert.ErrorIs(t, err, ErrEstoqueInsuficiente)
	f.tx.AssertNotCalled(t, "Commit")
	f.tx.AssertCalled(t, "Rollback")
	f.vendas.AssertNotCalled(t, "InserirVenda", mock.Anything, mock.Anything, mock.Anything)

	preservado, buscarErr := f.carrinhos.Buscar(carrinho.ID)
	assert.NoError(t, buscarErr)
	assert.Len(t, preservado.Itens, 2)
}

func TestRegistrarVendaVendedorInativo(t *testing.T) {
	// Arrange
	f := novoVendaFixture()
	ctx := context.Background()
	carrinho := f.carrinhoComItens()

	inativo := vendedorAtivo()
	inativo.Ativo = false

	f.clientes.On("Buscar", mock.Anything, "202312345").Return(clienteSocio(), nil)
	f.vendedores.On("Buscar", mock.Anything, "202399999").Return(inativo, nil)

	// Act
	_, err := f.useCase.RegistrarVenda(ctx, RegistrarVendaRequest{
		CarrinhoID:        carrinho.ID,
		ClienteMatricula:  "202312345",
		VendedorMatricula: "202399999",
		FormaPagamento:    FormaPagamentoPix,
	})

	// Assert
	assert.ErrorIs(t, err, ErrVendedorInativo)
	f.vendas.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestRegistrarVendaCarrinhoVazio(t *testing.T) {
	// Arrange
	f := novoVendaFixture()
	ctx := context.Background()
	carrinho := f.carrinhos.Criar()

	f.clientes.On("Buscar", mock.Anything, "202312345").Return(clienteSocio(), nil)
	f.vendedores.On("Buscar", mock.Anything, "202399999").Return(vendedorAtivo(), nil)

	// Act
	_, err := f.useCase.RegistrarVenda(ctx, RegistrarVendaRequest{
		CarrinhoID:        carrinho.ID,
		ClienteMatricula:  "202312345",
		VendedorMatricula: "202399999",
		FormaPagamento:    FormaPagamentoPix,
	})

	// Assert
	assert.ErrorIs(t, err, ErrCarrinhoVazio)
	f.vendas.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestRegistrarVendaClienteNaoEncontrado(t *testing.T) {
	// Arrange
	f := novoVendaFixture()
	ctx := context.Background()
	carrinho := f.carrinhoComItens()

	f.clientes.On("Buscar", mock.Anything, "999999").Return((*Cliente)(nil), ErrClienteNaoEncontrado)

	// Act
	_, err := f.useCase.RegistrarVenda(ctx, RegistrarVendaRequest{
		CarrinhoID:        carrinho.ID,
		ClienteMatricula:  "999999",
		VendedorMatricula: "202399999",
		FormaPagamento:    FormaPagamentoPix,
	})

	// Assert
	assert.ErrorIs(t, err, ErrClienteNaoEncontrado)
}

func TestAutorizarVenda(t *testing.T) {
	// Arrange
	f := novoVendaFixture()
	ctx := context.Background()
	pendente := NovaVenda("venda-123", "202312345", FormaPagamentoPix, itensDeTeste(), Elegibilidade{})

	f.vendas.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.tx.On("Rollback").Return(nil)
	f.tx.On("Commit").Return(nil)
	f.vendas.On("BuscarVendaForUpdate", mock.Anything, f.tx, "venda-123").Return(pendente, nil)
	f.vendas.On("AtualizarStatus", mock.Anything, f.tx, "venda-123", VendaStatusAutorizada).Return(nil)
	f.vendas.On("CarimbarAutorizacao", mock.Anything, f.tx, "venda-123", mock.AnythingOfType("time.Time")).Return(nil)

	// Act
	venda, err := f.useCase.AutorizarVenda(ctx, "venda-123")

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, VendaStatusAutorizada, venda.Status)
	f.tx.AssertCalled(t, "Commit")
	f.vendas.AssertExpectations(t)
}

func TestAutorizarVendaJaAutorizada(t *testing.T) {
	// Arrange
	f := novoVendaFixture()
	ctx := context.Background()
	autorizada := NovaVenda("venda-123", "202312345", FormaPagamentoPix, itensDeTeste(), Elegibilidade{})
	autorizada.Status = VendaStatusAutorizada

	f.vendas.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.tx.On("Rollback").Return(nil)
	f.vendas.On("BuscarVendaForUpdate", mock.Anything, f.tx, "venda-123").Return(autorizada, nil)

	// Act
	_, err := f.useCase.AutorizarVenda(ctx, "venda-123")

	// Assert
	assert.ErrorIs(t, err, ErrTransicaoInvalida)
	f.tx.AssertNotCalled(t, "Commit")
	f.vendas.AssertNotCalled(t, "AtualizarStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAutorizarVendaSemAtribuicao(t *testing.T) {
	// Arrange: o carimbo de autorização não encontra a atribuição
	f := novoVendaFixture()
	ctx := context.Background()
	pendente := NovaVenda("venda-123", "202312345", FormaPagamentoPix, itensDeTeste(), Elegibilidade{})

	f.vendas.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.tx.On("Rollback").Return(nil)
	f.vendas.On("BuscarVendaForUpdate", mock.Anything, f.tx, "venda-123").Return(pendente, nil)
	f.vendas.On("AtualizarStatus", mock.Anything, f.tx, "venda-123", VendaStatusAutorizada).Return(nil)
	f.vendas.On("CarimbarAutorizacao", mock.Anything, f.tx, "venda-123", mock.AnythingOfType("time.Time")).
		Return(errors.New("venda venda-123 has no atribuição"))

	// Act
	_, err := f.useCase.AutorizarVenda(ctx, "venda-123")

	// Assert: a autorização inteira volta atrás
	assert.Error(t, err)
	f.tx.AssertNotCalled(t, "Commit")
	f.tx.AssertCalled(t, "Rollback")
}

func TestCancelarVenda(t *testing.T) {
	// Arrange
	f := novoVendaFixture()
	ctx := context.Background()
	pendente := NovaVenda("venda-123", "202312345", FormaPagamentoPix, itensDeTeste(), Elegibilidade{})

	f.vendas.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.tx.On("Rollback").Return(nil)
	f.tx.On("Commit").Return(nil)
	f.vendas.On("BuscarVendaForUpdate", mock.Anything, f.tx, "venda-123").Return(pendente, nil)
	f.vendas.On("AtualizarStatus", mock.Anything, f.tx, "venda-123", VendaStatusCancelada).Return(nil)

	// Act
	venda, err := f.useCase.CancelarVenda(ctx, "venda-123")

	// Assert: cancelamento é só mudança de status, sem mexer no estoque
	assert.NoError(t, err)
	assert.Equal(t, VendaStatusCancelada, venda.Status)
	f.vendas.AssertNotCalled(t, "CarimbarAutorizacao", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.produtos.AssertNotCalled(t, "DecrementarEstoque", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelarVendaCancelada(t *testing.T) {
	// Arrange
	f := novoVendaFixture()
	ctx := context.Background()
	cancelada := NovaVenda("venda-123", "202312345", FormaPagamentoPix, itensDeTeste(), Elegibilidade{})
	cancelada.Status = VendaStatusCancelada

	f.vendas.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.tx.On("Rollback").Return(nil)
	f.vendas.On("BuscarVendaForUpdate", mock.Anything, f.tx, "venda-123").Return(cancelada, nil)

	// Act
	_, err := f.useCase.CancelarVenda(ctx, "venda-123")

	// Assert
	assert.ErrorIs(t, err, ErrTransicaoInvalida)
	f.tx.AssertNotCalled(t, "Commit")
}

func TestDetalharVenda(t *testing.T) {
	// Arrange
	f := novoVendaFixture()
	ctx := context.Background()
	venda := NovaVenda("venda-123", "202312345", FormaPagamentoPix, nil, Elegibilidade{})
	itens := itensDeTeste()

	f.vendas.On("BuscarVenda", mock.Anything, "venda-123").Return(venda, nil)
	f.vendas.On("ItensDaVenda", mock.Anything, "venda-123").Return(itens, nil)

	// Act
	detalhada, err := f.useCase.DetalharVenda(ctx, "venda-123")

	// Assert
	assert.NoError(t, err)
	assert.Len(t, detalhada.Itens, 2)
}

func TestRegistrarVendaEmiteSpan(t *testing.T) {
	// Arrange: tracer de verdade, com gravador de spans
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	f := novoVendaFixture()
	f.useCase = NewVendaUseCase(f.vendas, f.produtos, f.clientes, f.vendedores,
		NewElegibilidadeUseCase(f.clientes), f.carrinhos, provider.Tracer("test"), nil)
	ctx := context.Background()
	carrinho := f.carrinhoComItens()

	f.clientes.On("Buscar", mock.Anything, "202312345").Return(clienteSocio(), nil)
	f.vendedores.On("Buscar", mock.Anything, "202399999").Return(vendedorAtivo(), nil)
	f.clientes.On("AvaliarElegibilidade", mock.Anything, "202312345").Return(Elegibilidade{}, nil)
	f.vendas.On("BeginTx", mock.Anything).Return(f.tx, nil)
	f.tx.On("Rollback").Return(nil)
	f.tx.On("Commit").Return(nil)
	f.produtos.On("DecrementarEstoque", mock.Anything, f.tx, mock.Anything, mock.Anything).Return(nil)
	f.vendas.On("InserirVenda", mock.Anything, f.tx, mock.AnythingOfType("*main.Venda")).Return(nil)
	f.vendas.On("InserirItem", mock.Anything, f.tx, mock.AnythingOfType("*main.ItemVenda")).Return(nil)
	f.vendas.On("InserirAtribuicao", mock.Anything, f.tx, mock.AnythingOfType("*main.VendedorVenda")).Return(nil)

	// Act
	_, err := f.useCase.RegistrarVenda(ctx, RegistrarVendaRequest{
		CarrinhoID:        carrinho.ID,
		ClienteMatricula:  "202312345",
		VendedorMatricula: "202399999",
		FormaPagamento:    FormaPagamentoPix,
	})

	// Assert: o fechamento da venda aparece no trace
	assert.NoError(t, err)
	nomes := []string{}
	for _, span := range recorder.Ended() {
		nomes = append(nomes, span.Name())
	}
	assert.Contains(t, nomes, "VendaUseCase.RegistrarVenda")
}

func TestElegibilidadeAvaliar(t *testing.T) {
	// Arrange
	clientes := new(MockClienteRepository)
	uc := NewElegibilidadeUseCase(clientes)
	ctx := context.Background()

	clientes.On("AvaliarElegibilidade", mock.Anything, "202312345").
		Return(Elegibilidade{Qualifica: true, Motivo: "promoção da torcida"}, nil)

	// Act
	eleg := uc.Avaliar(ctx, "202312345")

	// Assert
	assert.True(t, eleg.Qualifica)
	assert.Equal(t, "promoção da torcida", eleg.Motivo)

	// Avaliação é idempotente: mesma entrada, mesmo resultado
	assert.Equal(t, eleg, uc.Avaliar(ctx, "202312345"))
}

func TestElegibilidadeDegradaParaSemDesconto(t *testing.T) {
	// Arrange
	clientes := new(MockClienteRepository)
	uc := NewElegibilidadeUseCase(clientes)
	ctx := context.Background()

	clientes.On("AvaliarElegibilidade", mock.Anything, "202312345").
		Return(Elegibilidade{}, errors.New("timeout"))

	// Act
	eleg := uc.Avaliar(ctx, "202312345")

	// Assert
	assert.False(t, eleg.Qualifica)
	assert.Empty(t, eleg.Motivo)
}

func TestClienteUseCaseCriar(t *testing.T) {
	// Arrange
	clientes := new(MockClienteRepository)
	vendas := new(MockVendaRepository)
	uc := NewClienteUseCase(clientes, vendas)
	ctx := context.Background()

	cliente := &Cliente{
		Matricula: "202312345",
		Nome:      "Ana Silva",
		Email:     "ana@usp.br",
		Telefone:  "(11) 98765-4321",
		EhSocio:   true,
		Time:      "Flamengo",
		Cidade:    "Santos",
	}

	clientes.On("Buscar", mock.Anything, "202312345").Return((*Cliente)(nil), ErrClienteNaoEncontrado)
	clientes.On("EmailEmUso", mock.Anything, "ana@usp.br", "202312345").Return(false, nil)
	clientes.On("Criar", mock.Anything, cliente).Return(nil)

	// Act
	err := uc.Criar(ctx, cliente)

	// Assert: telefone normalizado antes de persistir
	assert.NoError(t, err)
	assert.Equal(t, "11987654321", cliente.Telefone)
	clientes.AssertExpectations(t)
}

func TestClienteUseCaseCriarNormalizaMatricula(t *testing.T) {
	// Arrange: matrícula digitada com espaços ao redor
	clientes := new(MockClienteRepository)
	uc := NewClienteUseCase(clientes, new(MockVendaRepository))
	ctx := context.Background()

	cliente := &Cliente{
		Matricula: "  202312345 ",
		Nome:      "Ana Silva",
		Email:     "ana@usp.br",
		Telefone:  "(11) 98765-4321",
		Time:      "Flamengo",
		Cidade:    "Santos",
	}

	clientes.On("Buscar", mock.Anything, "202312345").Return((*Cliente)(nil), ErrClienteNaoEncontrado)
	clientes.On("EmailEmUso", mock.Anything, "ana@usp.br", "202312345").Return(false, nil)
	clientes.On("Criar", mock.Anything, cliente).Return(nil)

	// Act
	err := uc.Criar(ctx, cliente)

	// Assert: a matrícula persistida é a mesma que a busca vai usar
	assert.NoError(t, err)
	assert.Equal(t, "202312345", cliente.Matricula)
	clientes.AssertExpectations(t)
}

func TestClienteUseCaseCriarDadosInvalidos(t *testing.T) {
	// Arrange
	uc := NewClienteUseCase(new(MockClienteRepository), new(MockVendaRepository))

	cliente := &Cliente{
		Matricula: "12a",
		Nome:      "Ana Silva",
		Email:     "ana@usp.br",
		Telefone:  "11987654321",
		Time:      "Flamengo",
		Cidade:    "Santos",
	}

	// Act
	err := uc.Criar(context.Background(), cliente)

	// Assert
	assert.ErrorIs(t, err, ErrDadosInvalidos)
}

func TestClienteUseCaseCriarMatriculaEmUso(t *testing.T) {
	// Arrange
	clientes := new(MockClienteRepository)
	uc := NewClienteUseCase(clientes, new(MockVendaRepository))
	ctx := context.Background()

	existente := clienteSocio()
	clientes.On("Buscar", mock.Anything, "202312345").Return(existente, nil)

	cliente := &Cliente{
		Matricula: "202312345",
		Nome:      "Outra Pessoa",
		Email:     "outra@usp.br",
		Telefone:  "11987654321",
		Time:      "Santos",
		Cidade:    "Santos",
	}

	// Act
	err := uc.Criar(ctx, cliente)

	// Assert
	assert.ErrorIs(t, err, ErrMatriculaEmUso)
	clientes.AssertNotCalled(t, "Criar", mock.Anything, mock.Anything)
}

func TestClienteUseCaseCriarEmailEmUso(t *testing.T) {
	// Arrange
	clientes := new(MockClienteRepository)
	uc := NewClienteUseCase(clientes, new(MockVendaRepository))
	ctx := context.Background()

	clientes.On("Buscar", mock.Anything, "202312345").Return((*Cliente)(nil), ErrClienteNaoEncontrado)
	clientes.On("EmailEmUso", mock.Anything, "ana@usp.br", "202312345").Return(true, nil)

	cliente := &Cliente{
		Matricula: "202312345",
		Nome:      "Ana Silva",
		Email:     "ana@usp.br",
		Telefone:  "11987654321",
		Time:      "Flamengo",
		Cidade:    "Santos",
	}

	// Act
	err := uc.Criar(ctx, cliente)

	// Assert
	assert.ErrorIs(t, err, ErrEmailEmUso)
}

func TestClienteUseCaseDeletarComVendas(t *testing.T) {
	// Arrange
	clientes := new(MockClienteRepository)
	vendas := new(MockVendaRepository)
	uc := NewClienteUseCase(clientes, vendas)
	ctx := context.Background()

	vendas.On("ClientePossuiVendas", mock.Anything, "202312345").Return(true, nil)

	// Act
	err := uc.Deletar(ctx, "202312345")

	// Assert: histórico de vendas protege o cadastro
	assert.ErrorIs(t, err, ErrRegistroEmUso)
	clientes.AssertNotCalled(t, "Deletar", mock.Anything, mock.Anything)
}

func TestProdutoUseCaseCriar(t *testing.T) {
	// Arrange
	produtos := new(MockProdutoRepository)
	uc := NewProdutoUseCase(produtos, new(MockVendaRepository))
	ctx := context.Background()

	produto := &Produto{
		Nome:             "Camiseta da Atlética",
		Quantidade:       50,
		Preco:            decimal.RequireFromString("49.90"),
		CidadeFabricacao: "Santos",
		Categoria:        CategoriaRoupa,
	}

	produtos.On("NomeEmUso", mock.Anything, "Camiseta da Atlética", "").Return(false, nil)
	produtos.On("Criar", mock.Anything, produto).Return(nil)

	// Act
	err := uc.Criar(ctx, produto)

	// Assert: id gerado no cadastro
	assert.NoError(t, err)
	assert.NotEmpty(t, produto.ID)
	produtos.AssertExpectations(t)
}

func TestProdutoUseCaseCriarPrecoInvalido(t *testing.T) {
	// Arrange
	uc := NewProdutoUseCase(new(MockProdutoRepository), new(MockVendaRepository))

	produto := &Produto{
		Nome:             "Camiseta",
		Quantidade:       10,
		Preco:            decimal.Zero,
		CidadeFabricacao: "Santos",
	}

	// Act
	err := uc.Criar(context.Background(), produto)

	// Assert
	assert.ErrorIs(t, err, ErrDadosInvalidos)
}

func TestProdutoUseCaseCriarNomeEmUso(t *testing.T) {
	// Arrange
	produtos := new(MockProdutoRepository)
	uc := NewProdutoUseCase(produtos, new(MockVendaRepository))
	ctx := context.Background()

	produtos.On("NomeEmUso", mock.Anything, "Camiseta", "").Return(true, nil)

	produto := &Produto{
		Nome:             "Camiseta",
		Quantidade:       10,
		Preco:            decimal.RequireFromString("49.90"),
		CidadeFabricacao: "Santos",
	}

	// Act
	err := uc.Criar(ctx, produto)

	// Assert
	assert.ErrorIs(t, err, ErrNomeProdutoEmUso)
	produtos.AssertNotCalled(t, "Criar", mock.Anything, mock.Anything)
}

func TestProdutoUseCaseDeletarComVendas(t *testing.T) {
	// Arrange
	produtos := new(MockProdutoRepository)
	vendas := new(MockVendaRepository)
	uc := NewProdutoUseCase(produtos, vendas)
	ctx := context.Background()

	vendas.On("ProdutoPossuiVendas", mock.Anything, "produto-1").Return(true, nil)

	// Act
	err := uc.Deletar(ctx, "produto-1")

	// Assert
	assert.ErrorIs(t, err, ErrRegistroEmUso)
	produtos.AssertNotCalled(t, "Deletar", mock.Anything, mock.Anything)
}

func TestVendedorUseCaseDeletarComVendas(t *testing.T) {
	// Arrange
	vendedores := new(MockVendedorRepository)
	vendas := new(MockVendaRepository)
	uc := NewVendedorUseCase(vendedores, vendas)
	ctx := context.Background()

	vendas.On("VendedorPossuiVendas", mock.Anything, "202399999").Return(true, nil)

	// Act
	err := uc.Deletar(ctx, "202399999")

	// Assert
	assert.ErrorIs(t, err, ErrRegistroEmUso)
	vendedores.AssertNotCalled(t, "Deletar", mock.Anything, mock.Anything)
}
