package main

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemCarrinho é uma linha do carrinho com o preço congelado no
// momento da adição. Dois itens do mesmo produto podem carregar
// preços diferentes se o catálogo mudou entre as adições.
type ItemCarrinho struct {
	ProdutoID     string          `json:"produto_id"`
	ProdutoNome   string          `json:"produto_nome"`
	Quantidade    int             `json:"quantidade"`
	ValorUnitario decimal.Decimal `json:"valor_unitario"`
}

// Carrinho acumula itens de uma venda em andamento. Nada é escrito no
// banco até o commit: abandonar o carrinho não tem efeito colateral.
type Carrinho struct {
	ID       string         `json:"id"`
	Itens    []ItemCarrinho `json:"itens"`
	CriadoEm time.Time      `json:"criado_em"`
}

// Subtotal soma quantidade * valor unitário de todos os itens,
// em decimal exato.
func (c *Carrinho) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c.Itens {
		subtotal = subtotal.Add(item.ValorUnitario.Mul(decimal.NewFromInt(int64(item.Quantidade))))
	}
	return subtotal
}

// Adicionar acrescenta um item ao final do carrinho.
func (c *Carrinho) Adicionar(item ItemCarrinho) {
	c.Itens = append(c.Itens, item)
}

// RemoverUltimo descarta o último item adicionado. Retorna false se o
// carrinho já estava vazio.
func (c *Carrinho) RemoverUltimo() bool {
	if len(c.Itens) == 0 {
		return false
	}
	c.Itens = c.Itens[:len(c.Itens)-1]
	return true
}

func (c *Carrinho) clone() *Carrinho {
	copia := *c
	copia.Itens = append([]ItemCarrinho(nil), c.Itens...)
	return &copia
}

// CarrinhoStore guarda os carrinhos abertos em memória. O estoque não
// é reservado enquanto o carrinho existe; a checagem definitiva
// acontece na transação de commit.
//
// Toda mutação de carrinho passa pelo lock do store, e as leituras
// devolvem cópias: requisições concorrentes sobre o mesmo carrinho
// nunca compartilham o slice de itens.
type CarrinhoStore struct {
	mu        sync.RWMutex
	carrinhos map[string]*Carrinho
}

// NewCarrinhoStore cria um store vazio de carrinhos
func NewCarrinhoStore() *CarrinhoStore {
	return &CarrinhoStore{carrinhos: make(map[string]*Carrinho)}
}

// Criar abre um carrinho novo e retorna uma cópia dele
func (s *CarrinhoStore) Criar() *Carrinho {
	carrinho := &Carrinho{
		ID:       uuid.New().String(),
		CriadoEm: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carrinhos[carrinho.ID] = carrinho
	return carrinho.clone()
}

// Buscar retorna uma cópia do carrinho pelo id
func (s *CarrinhoStore) Buscar(id string) (*Carrinho, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	carrinho, ok := s.carrinhos[id]
	if !ok {
		return nil, ErrCarrinhoNaoEncontrado
	}
	return carrinho.clone(), nil
}

// Adicionar acrescenta um item ao carrinho sob o lock do store e
// retorna o estado resultante
func (s *CarrinhoStore) Adicionar(id string, item ItemCarrinho) (*Carrinho, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	carrinho, ok := s.carrinhos[id]
	if !ok {
		return nil, ErrCarrinhoNaoEncontrado
	}
	carrinho.Adicionar(item)
	return carrinho.clone(), nil
}

// RemoverUltimo descarta o último item adicionado ao carrinho e
// retorna o estado resultante. ErrCarrinhoVazio se não havia itens.
func (s *CarrinhoStore) RemoverUltimo(id string) (*Carrinho, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	carrinho, ok := s.carrinhos[id]
	if !ok {
		return nil, ErrCarrinhoNaoEncontrado
	}
	if !carrinho.RemoverUltimo() {
		return nil, ErrCarrinhoVazio
	}
	return carrinho.clone(), nil
}

// Descartar remove o carrinho do store (abandono ou pós-commit)
func (s *CarrinhoStore) Descartar(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carrinhos, id)
}
