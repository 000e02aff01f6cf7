package main

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCarrinhoSubtotal(t *testing.T) {
	// Arrange
	carrinho := &Carrinho{}
	carrinho.Adicionar(ItemCarrinho{
		ProdutoID:     "produto-1",
		Quantidade:    2,
		ValorUnitario: decimal.RequireFromString("10.00"),
	})
	carrinho.Adicionar(ItemCarrinho{
		ProdutoID:     "produto-2",
		Quantidade:    3,
		ValorUnitario: decimal.RequireFromString("0.10"),
	})

	// Act
	subtotal := carrinho.Subtotal()

	// Assert: soma exata em decimal, sem deriva binária
	assert.True(t, subtotal.Equal(decimal.RequireFromString("20.30")),
		"Expected 20.30, got %s", subtotal)
}

func TestCarrinhoRemoverUltimo(t *testing.T) {
	// Arrange
	carrinho := &Carrinho{}
	carrinho.Adicionar(ItemCarrinho{ProdutoID: "produto-1", Quantidade: 1,
		ValorUnitario: decimal.RequireFromString("5.00")})
	carrinho.Adicionar(ItemCarrinho{ProdutoID: "produto-2", Quantidade: 1,
		ValorUnitario: decimal.RequireFromString("7.00")})

	// Act
	removido := carrinho.RemoverUltimo()

	// Assert: remove o mais recente, o resto permanece
	assert.True(t, removido)
	assert.Len(t, carrinho.Itens, 1)
	assert.Equal(t, "produto-1", carrinho.Itens[0].ProdutoID)

	assert.True(t, carrinho.RemoverUltimo())
	assert.False(t, carrinho.RemoverUltimo(), "Expected false on empty carrinho")
}

func TestCarrinhoStore(t *testing.T) {
	// Arrange
	store := NewCarrinhoStore()

	// Act
	carrinho := store.Criar()

	// Assert
	assert.NotEmpty(t, carrinho.ID)
	assert.Empty(t, carrinho.Itens)

	encontrado, err := store.Buscar(carrinho.ID)
	assert.NoError(t, err)
	assert.Equal(t, carrinho, encontrado)

	_, err = store.Buscar("nao-existe")
	assert.ErrorIs(t, err, ErrCarrinhoNaoEncontrado)

	store.Descartar(carrinho.ID)
	_, err = store.Buscar(carrinho.ID)
	assert.ErrorIs(t, err, ErrCarrinhoNaoEncontrado)
}

func TestCarrinhoStoreBuscarRetornaCopia(t *testing.T) {
	// Arrange
	store := NewCarrinhoStore()
	carrinho := store.Criar()
	item := ItemCarrinho{ProdutoID: "produto-1", Quantidade: 1,
		ValorUnitario: decimal.RequireFromString("5.00")}
	store.Adicionar(carrinho.ID, item)

	// Act
	snapshot, err := store.Buscar(carrinho.ID)
	assert.NoError(t, err)
	store.Adicionar(carrinho.ID, item)

	// Assert: a cópia não enxerga adições posteriores
	assert.Len(t, snapshot.Itens, 1)

	atual, err := store.Buscar(carrinho.ID)
	assert.NoError(t, err)
	assert.Len(t, atual.Itens, 2)
}

func TestCarrinhoStoreAdicionarConcorrente(t *testing.T) {
	// Arrange: um único carrinho disputado por várias goroutines,
	// como requisições simultâneas sobre a mesma sessão
	store := NewCarrinhoStore()
	carrinho := store.Criar()
	item := ItemCarrinho{ProdutoID: "produto-1", Quantidade: 1,
		ValorUnitario: decimal.RequireFromString("1.00")}

	// Act
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Adicionar(carrinho.ID, item); err != nil {
				t.Errorf("Adicionar falhou: %v", err)
			}
		}()
	}
	wg.Wait()

	// Assert: nenhuma adição se perde
	final, err := store.Buscar(carrinho.ID)
	assert.NoError(t, err)
	assert.Len(t, final.Itens, 50)
	assert.True(t, final.Subtotal().Equal(decimal.RequireFromString("50.00")),
		"Expected 50.00, got %s", final.Subtotal())
}

func TestCarrinhoUseCaseAdicionarItem(t *testing.T) {
	// Arrange
	store := NewCarrinhoStore()
	produtos := new(MockProdutoRepository)
	uc := NewCarrinhoUseCase(store, produtos)
	ctx := context.Background()
	carrinho := store.Criar()

	produto := &Produto{
		ID:         "produto-1",
		Nome:       "Caneca da Atlética",
		Quantidade: 10,
		Preco:      decimal.RequireFromString("25.90"),
	}
	produtos.On("Buscar", ctx, "produto-1").Return(produto, nil)

	// Act
	atualizado, err := uc.AdicionarItem(ctx, carrinho.ID, "produto-1", 2)

	// Assert: preço congelado no momento da adição
	assert.NoError(t, err)
	assert.Len(t, atualizado.Itens, 1)
	assert.Equal(t, "Caneca da Atlética", atualizado.Itens[0].ProdutoNome)
	assert.True(t, atualizado.Itens[0].ValorUnitario.Equal(decimal.RequireFromString("25.90")))
	produtos.AssertExpectations(t)
}

func TestCarrinhoUseCaseCongelaPreco(t *testing.T) {
	// Arrange
	store := NewCarrinhoStore()
	produtos := new(MockProdutoRepository)
	uc := NewCarrinhoUseCase(store, produtos)
	ctx := context.Background()
	carrinho := store.Criar()

	produto := &Produto{ID: "produto-1", Nome: "Caneca", Quantidade: 10,
		Preco: decimal.RequireFromString("25.90")}
	produtos.On("Buscar", ctx, "produto-1").Return(produto, nil).Once()

	_, err := uc.AdicionarItem(ctx, carrinho.ID, "produto-1", 1)
	assert.NoError(t, err)

	// preço do catálogo muda entre as adições
	reajustado := &Produto{ID: "produto-1", Nome: "Caneca", Quantidade: 10,
		Preco: decimal.RequireFromString("30.00")}
	produtos.On("Buscar", ctx, "produto-1").Return(reajustado, nil).Once()

	// Act
	atualizado, err := uc.AdicionarItem(ctx, carrinho.ID, "produto-1", 1)

	// Assert: cada item carrega o preço do momento da sua adição
	assert.NoError(t, err)
	assert.Len(t, atualizado.Itens, 2)
	assert.True(t, atualizado.Itens[0].ValorUnitario.Equal(decimal.RequireFromString("25.90")))
	assert.True(t, atualizado.Itens[1].ValorUnitario.Equal(decimal.RequireFromString("30.00")))
	assert.True(t, atualizado.Subtotal().Equal(decimal.RequireFromString("55.90")))
}

func TestCarrinhoUseCaseEstoqueInsuficiente(t *testing.T) {
	// Arrange
	store := NewCarrinhoStore()
	produtos := new(MockProdutoRepository)
	uc := NewCarrinhoUseCase(store, produtos)
	ctx := context.Background()
	carrinho := store.Criar()

	produto := &Produto{ID: "produto-1", Nome: "Ingresso", Quantidade: 3,
		Preco: decimal.RequireFromString("50.00")}
	produtos.On("Buscar", ctx, "produto-1").Return(produto, nil)

	// Act
	_, err := uc.AdicionarItem(ctx, carrinho.ID, "produto-1", 5)

	// Assert: rejeição informativa, carrinho permanece como estava
	assert.ErrorIs(t, err, ErrEstoqueInsuficiente)
	assert.Contains(t, err.Error(), "solicitado 5")
	assert.Contains(t, err.Error(), "disponível 3")

	intacto, buscarErr := store.Buscar(carrinho.ID)
	assert.NoError(t, buscarErr)
	assert.Empty(t, intacto.Itens)
}

func TestCarrinhoUseCaseQuantidadeInvalida(t *testing.T) {
	// Arrange
	store := NewCarrinhoStore()
	produtos := new(MockProdutoRepository)
	uc := NewCarrinhoUseCase(store, produtos)
	carrinho := store.Criar()

	// Act / Assert
	_, err := uc.AdicionarItem(context.Background(), carrinho.ID, "produto-1", 0)
	assert.ErrorIs(t, err, ErrQuantidadeInvalida)

	_, err = uc.AdicionarItem(context.Background(), carrinho.ID, "produto-1", -2)
	assert.ErrorIs(t, err, ErrQuantidadeInvalida)
}

func TestCarrinhoUseCaseProdutoInexistente(t *testing.T) {
	// Arrange
	store := NewCarrinhoStore()
	produtos := new(MockProdutoRepository)
	uc := NewCarrinhoUseCase(store, produtos)
	ctx := context.Background()
	carrinho := store.Criar()

	produtos.On("Buscar", ctx, "fantasma").Return((*Produto)(nil), ErrProdutoNaoEncontrado)

	// Act
	_, err := uc.AdicionarItem(ctx, carrinho.ID, "fantasma", 1)

	// Assert
	assert.ErrorIs(t, err, ErrProdutoNaoEncontrado)
}

func TestCarrinhoUseCaseRemoverDeVazio(t *testing.T) {
	// Arrange
	store := NewCarrinhoStore()
	uc := NewCarrinhoUseCase(store, new(MockProdutoRepository))
	carrinho := store.Criar()

	// Act
	_, err := uc.RemoverUltimo(carrinho.ID)

	// Assert
	assert.True(t, errors.Is(err, ErrCarrinhoVazio))
}

func TestCarrinhoUseCaseDescartar(t *testing.T) {
	// Arrange
	store := NewCarrinhoStore()
	uc := NewCarrinhoUseCase(store, new(MockProdutoRepository))
	carrinho := store.Criar()

	// Act / Assert
	assert.NoError(t, uc.Descartar(carrinho.ID))
	assert.ErrorIs(t, uc.Descartar(carrinho.ID), ErrCarrinhoNaoEncontrado)
}
