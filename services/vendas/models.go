package main

import "github.com/shopspring/decimal"

// CriarClienteRequest representa a requisição de cadastro de cliente
type CriarClienteRequest struct {
	Matricula string `json:"matricula" binding:"required"`
	Nome      string `json:"nome" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Telefone  string `json:"telefone" binding:"required"`
	EhSocio   bool   `json:"eh_socio"`
	Time      string `json:"time" binding:"required"`
	Cidade    string `json:"cidade" binding:"required"`
	AssisteOP bool   `json:"assiste_op"`
}

// AtualizarClienteRequest representa a requisição de atualização de cliente
type AtualizarClienteRequest struct {
	Nome      string `json:"nome" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Telefone  string `json:"telefone" binding:"required"`
	EhSocio   bool   `json:"eh_socio"`
	Time      string `json:"time" binding:"required"`
	Cidade    string `json:"cidade" binding:"required"`
	AssisteOP bool   `json:"assiste_op"`
}

// CriarProdutoRequest representa a requisição de cadastro de produto
type CriarProdutoRequest struct {
	Nome             string          `json:"nome" binding:"required"`
	Quantidade       int             `json:"quantidade" binding:"gte=0"`
	Preco            decimal.Decimal `json:"preco" binding:"required"`
	CidadeFabricacao string          `json:"cidade_fabricacao" binding:"required"`
	Categoria        string          `json:"categoria"`
}

// CriarVendedorRequest representa a requisição de cadastro de vendedor
type CriarVendedorRequest struct {
	Matricula string `json:"matricula" binding:"required"`
	Nome      string `json:"nome" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Telefone  string `json:"telefone" binding:"required"`
	Ativo     *bool  `json:"ativo"`
}

// AtualizarVendedorRequest representa a requisição de atualização de vendedor
type AtualizarVendedorRequest struct {
	Nome     string `json:"nome" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Telefone string `json:"telefone" binding:"required"`
	Ativo    bool   `json:"ativo"`
}

// AdicionarItemRequest representa a requisição de adição de item ao carrinho
type AdicionarItemRequest struct {
	ProdutoID  string `json:"produto_id" binding:"required"`
	Quantidade int    `json:"quantidade" binding:"required,gt=0"`
}

// FecharVendaRequest representa a requisição de fechamento de venda
type FecharVendaRequest struct {
	CarrinhoID        string `json:"carrinho_id" binding:"required"`
	ClienteMatricula  string `json:"cliente_matricula" binding:"required"`
	VendedorMatricula string `json:"vendedor_matricula" binding:"required"`
	FormaPagamento    string `json:"forma_pagamento" binding:"required"`
}
