package main

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Erros de domínio retornados pelos use cases e repositórios
var (
	ErrClienteNaoEncontrado   = errors.New("cliente não encontrado")
	ErrProdutoNaoEncontrado   = errors.New("produto não encontrado")
	ErrVendedorNaoEncontrado  = errors.New("vendedor não encontrado")
	ErrVendaNaoEncontrada     = errors.New("venda não encontrada")
	ErrCarrinhoNaoEncontrado  = errors.New("carrinho não encontrado")
	ErrVendedorInativo        = errors.New("vendedor inativo não pode ser atribuído a uma venda")
	ErrEstoqueInsuficiente    = errors.New("estoque insuficiente")
	ErrCarrinhoVazio          = errors.New("carrinho vazio: a venda precisa de pelo menos um item")
	ErrTransicaoInvalida      = errors.New("transição de status inválida")
	ErrQuantidadeInvalida     = errors.New("quantidade deve ser um inteiro positivo")
	ErrFormaPagamentoInvalida = errors.New("forma de pagamento inválida")
	ErrCategoriaInvalida      = errors.New("categoria de produto inválida")
	ErrDadosInvalidos         = errors.New("dados inválidos")
	ErrRegistroEmUso          = errors.New("registro referenciado por vendas e não pode ser removido")
	ErrEmailEmUso             = errors.New("email já cadastrado no sistema")
	ErrMatriculaEmUso         = errors.New("matrícula já cadastrada no sistema")
	ErrNomeProdutoEmUso       = errors.New("já existe produto com esse nome")
)

// Cliente representa um membro da atlética
type Cliente struct {
	Matricula string    `json:"matricula"`
	Nome      string    `json:"nome"`
	Email     string    `json:"email"`
	Telefone  string    `json:"telefone"`
	EhSocio   bool      `json:"eh_socio"`
	Time      string    `json:"time"`
	Cidade    string    `json:"cidade"`
	AssisteOP bool      `json:"assiste_op"`
	CriadoEm  time.Time `json:"criado_em"`
}

// CategoriaProduto representa as categorias possíveis de um produto
type CategoriaProduto string

const (
	CategoriaRoupa     CategoriaProduto = "ROUPA"
	CategoriaAcessorio CategoriaProduto = "ACESSORIO"
	CategoriaIngresso  CategoriaProduto = "INGRESSO"
	CategoriaGeral     CategoriaProduto = "GERAL"
)

// ParseCategoria valida e normaliza uma categoria vinda da API
func ParseCategoria(s string) (CategoriaProduto, error) {
	switch CategoriaProduto(s) {
	case CategoriaRoupa, CategoriaAcessorio, CategoriaIngresso, CategoriaGeral:
		return CategoriaProduto(s), nil
	case "":
		return CategoriaGeral, nil
	}
	return "", ErrCategoriaInvalida
}

// Produto representa um item do estoque da atlética
type Produto struct {
	ID               string           `json:"id"`
	Nome             string           `json:"nome"`
	Quantidade       int              `json:"quantidade"`
	Preco            decimal.Decimal  `json:"preco"`
	CidadeFabricacao string           `json:"cidade_fabricacao"`
	Categoria        CategoriaProduto `json:"categoria"`
	CriadoEm         time.Time        `json:"criado_em"`
	AtualizadoEm     time.Time        `json:"atualizado_em"`
}

// Vendedor representa um membro que registra vendas
type Vendedor struct {
	Matricula string `json:"matricula"`
	Nome      string `json:"nome"`
	Email     string `json:"email"`
	Telefone  string `json:"telefone"`
	Ativo     bool   `json:"ativo"`
}

// FormaPagamento representa as formas de pagamento aceitas
type FormaPagamento string

const (
	FormaPagamentoPix      FormaPagamento = "PIX"
	FormaPagamentoDinheiro FormaPagamento = "DINHEIRO"
	FormaPagamentoBoleto   FormaPagamento = "BOLETO"
	FormaPagamentoCartao   FormaPagamento = "CARTAO"
	// FormaPagamentoBerries existe por insistência da diretoria
	FormaPagamentoBerries FormaPagamento = "BERRIES"
)

// ParseFormaPagamento valida uma forma de pagamento vinda da API
func ParseFormaPagamento(s string) (FormaPagamento, error) {
	switch FormaPagamento(s) {
	case FormaPagamentoPix, FormaPagamentoDinheiro, FormaPagamentoBoleto,
		FormaPagamentoCartao, FormaPagamentoBerries:
		return FormaPagamento(s), nil
	}
	return "", ErrFormaPagamentoInvalida
}

// VendaStatus representa os possíveis status de uma venda
type VendaStatus string

const (
	VendaStatusPendente   VendaStatus = "PENDENTE"
	VendaStatusAutorizada VendaStatus = "AUTORIZADA"
	VendaStatusCancelada  VendaStatus = "CANCELADA"
)

// ItemVenda representa uma linha de uma venda, com o preço congelado
// no momento em que o item entrou no carrinho
type ItemVenda struct {
	ID            string          `json:"id"`
	VendaID       string          `json:"venda_id"`
	ProdutoID     string          `json:"produto_id"`
	ProdutoNome   string          `json:"produto_nome,omitempty"`
	Quantidade    int             `json:"quantidade"`
	ValorUnitario decimal.Decimal `json:"valor_unitario"`
}

// Subtotal retorna quantidade * valor unitário do item
func (i ItemVenda) Subtotal() decimal.Decimal {
	return i.ValorUnitario.Mul(decimal.NewFromInt(int64(i.Quantidade)))
}

// Venda agrega o cabeçalho da venda e seus itens
type Venda struct {
	ID               string          `json:"id"`
	ClienteMatricula string          `json:"cliente_matricula"`
	ClienteNome      string          `json:"cliente_nome,omitempty"`
	ValorTotal       decimal.Decimal `json:"valor_total"`
	FormaPagamento   FormaPagamento  `json:"forma_pagamento"`
	DataVenda        time.Time       `json:"data_venda"`
	Status           VendaStatus     `json:"status"`
	DescontoAplicado bool            `json:"desconto_aplicado"`
	MotivoDesconto   string          `json:"motivo_desconto,omitempty"`
	ValorDesconto    decimal.Decimal `json:"valor_desconto"`
	Itens            []ItemVenda     `json:"itens,omitempty"`
}

// fatorDesconto é o único desconto do sistema: 10% sobre o subtotal.
// Sócio e promoção nunca acumulam.
var fatorDesconto = decimal.RequireFromString("0.10")

// NovaVenda monta uma venda PENDENTE a partir dos itens do carrinho,
// aplicando o desconto de 10% quando a elegibilidade qualifica.
// Todo o cálculo é feito em decimal exato, arredondado a 2 casas.
func NovaVenda(id, clienteMatricula string, forma FormaPagamento, itens []ItemVenda, eleg Elegibilidade) *Venda {
	subtotal := decimal.Zero
	for _, item := range itens {
		subtotal = subtotal.Add(item.Subtotal())
	}

	venda := &Venda{
		ID:               id,
		ClienteMatricula: clienteMatricula,
		FormaPagamento:   forma,
		DataVenda:        time.Now(),
		Status:           VendaStatusPendente,
		ValorTotal:       subtotal.Round(2),
		ValorDesconto:    decimal.Zero,
		Itens:            itens,
	}

	if eleg.Qualifica {
		desconto := subtotal.Mul(fatorDesconto).Round(2)
		venda.DescontoAplicado = true
		venda.MotivoDesconto = eleg.Motivo
		venda.ValorDesconto = desconto
		venda.ValorTotal = subtotal.Sub(desconto).Round(2)
	}

	return venda
}

// Autorizar transiciona a venda de PENDENTE para AUTORIZADA.
// Qualquer outro status é uma transição ilegal.
func (v *Venda) Autorizar() error {
	if v.Status != VendaStatusPendente {
		return ErrTransicaoInvalida
	}
	v.Status = VendaStatusAutorizada
	return nil
}

// Cancelar transiciona a venda de PENDENTE para CANCELADA (caminho manual).
func (v *Venda) Cancelar() error {
	if v.Status != VendaStatusPendente {
		return ErrTransicaoInvalida
	}
	v.Status = VendaStatusCancelada
	return nil
}

// ValidarTotais confere a consistência da venda:
// soma(quantidade * valor_unitario) - desconto == valor_total, a 2 casas.
func (v *Venda) ValidarTotais() error {
	soma := decimal.Zero
	for _, item := range v.Itens {
		if item.Quantidade <= 0 {
			return ErrQuantidadeInvalida
		}
		soma = soma.Add(item.Subtotal())
	}
	esperado := soma.Sub(v.ValorDesconto).Round(2)
	if !esperado.Equal(v.ValorTotal.Round(2)) {
		return errors.New("valor_total não confere com a soma dos itens menos o desconto")
	}
	return nil
}

// VendedorVenda liga o vendedor à venda registrada.
// AutorizadaEm só é preenchido na transição para AUTORIZADA.
type VendedorVenda struct {
	VendedorMatricula string     `json:"vendedor_matricula"`
	VendaID           string     `json:"venda_id"`
	AutorizadaEm      *time.Time `json:"autorizada_em,omitempty"`
}

// Elegibilidade é o resultado da avaliação de desconto de um cliente
type Elegibilidade struct {
	Qualifica bool   `json:"qualifica"`
	Motivo    string `json:"motivo,omitempty"`
}
