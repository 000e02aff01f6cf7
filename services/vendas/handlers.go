package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// statusDeErro mapeia os erros de negócio para códigos HTTP
func statusDeErro(err error) int {
	switch {
	case errors.Is(err, ErrClienteNaoEncontrado),
		errors.Is(err, ErrProdutoNaoEncontrado),
		errors.Is(err, ErrVendedorNaoEncontrado),
		errors.Is(err, ErrVendaNaoEncontrada),
		errors.Is(err, ErrCarrinhoNaoEncontrado):
		return http.StatusNotFound
	case errors.Is(err, ErrEmailEmUso),
		errors.Is(err, ErrMatriculaEmUso),
		errors.Is(err, ErrNomeProdutoEmUso),
		errors.Is(err, ErrRegistroEmUso),
		errors.Is(err, ErrTransicaoInvalida):
		return http.StatusConflict
	case errors.Is(err, ErrEstoqueInsuficiente),
		errors.Is(err, ErrCarrinhoVazio),
		errors.Is(err, ErrVendedorInativo):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrDadosInvalidos),
		errors.Is(err, ErrQuantidadeInvalida),
		errors.Is(err, ErrFormaPagamentoInvalida),
		errors.Is(err, ErrCategoriaInvalida):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func responderErro(c *gin.Context, err error) {
	c.JSON(statusDeErro(err), gin.H{"error": err.Error()})
}

// ClienteHandler contém os handlers HTTP do cadastro de clientes
type ClienteHandler struct {
	useCase       *ClienteUseCase
	elegibilidade *ElegibilidadeUseCase
}

// NewClienteHandler cria uma nova instância de ClienteHandler
func NewClienteHandler(useCase *ClienteUseCase, elegibilidade *ElegibilidadeUseCase) *ClienteHandler {
	return &ClienteHandler{
		useCase:       useCase,
		elegibilidade: elegibilidade,
	}
}

// Criar cadastra um novo cliente
func (h *ClienteHandler) Criar(c *gin.Context) {
	var req CriarClienteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cliente := &Cliente{
		Matricula: req.Matricula,
		Nome:      req.Nome,
		Email:     req.Email,
		Telefone:  req.Telefone,
		EhSocio:   req.EhSocio,
		Time:      req.Time,
		Cidade:    req.Cidade,
		AssisteOP: req.AssisteOP,
	}
	if err := h.useCase.Criar(c.Request.Context(), cliente); err != nil {
		responderErro(c, err)
		return
	}

	c.JSON(http.StatusCreated, cliente)
}

// Buscar retorna um cliente pela matrícula
func (h *ClienteHandler) Buscar(c *gin.Context) {
	cliente, err := h.useCase.Buscar(c.Request.Context(), c.Param("matricula"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, cliente)
}

// Listar retorna os clientes, com filtro opcional por nome (?nome=)
func (h *ClienteHandler) Listar(c *gin.Context) {
	clientes, err := h.useCase.Listar(c.Request.Context(), c.Query("nome"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientes": clientes, "total": len(clientes)})
}

// Atualizar grava um cliente existente
func (h *ClienteHandler) Atualizar(c *gin.Context) {
	var req AtualizarClienteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cliente := &Cliente{
		Matricula: c.Param("matricula"),
		Nome:      req.Nome,
		Email:     req.Email,
		Telefone:  req.Telefone,
		EhSocio:   req.EhSocio,
		Time:      req.Time,
		Cidade:    req.Cidade,
		AssisteOP: req.AssisteOP,
	}
	if err := h.useCase.Atualizar(c.Request.Context(), cliente); err != nil {
		responderErro(c, err)
		return
	}

	c.JSON(http.StatusOK, cliente)
}

// Deletar remove um cliente sem vendas no histórico
func (h *ClienteHandler) Deletar(c *gin.Context) {
	if err := h.useCase.Deletar(c.Request.Context(), c.Param("matricula")); err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// Elegibilidade retorna o resultado do predicado de desconto
func (h *ClienteHandler) Elegibilidade(c *gin.Context) {
	eleg := h.elegibilidade.Avaliar(c.Request.Context(), c.Param("matricula"))
	c.JSON(http.StatusOK, eleg)
}

// ProdutoHandler contém os handlers HTTP do catálogo de produtos
type ProdutoHandler struct {
	useCase *ProdutoUseCase
}

// NewProdutoHandler cria uma nova instância de ProdutoHandler
func NewProdutoHandler(useCase *ProdutoUseCase) *ProdutoHandler {
	return &ProdutoHandler{useCase: useCase}
}

// Criar cadastra um novo produto
func (h *ProdutoHandler) Criar(c *gin.Context) {
	var req CriarProdutoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categoria, err := ParseCategoria(req.Categoria)
	if err != nil {
		responderErro(c, err)
		return
	}

	produto := &Produto{
		Nome:             req.Nome,
		Quantidade:       req.Quantidade,
		Preco:            req.Preco,
		CidadeFabricacao: req.CidadeFabricacao,
		Categoria:        categoria,
	}
	if err := h.useCase.Criar(c.Request.Context(), produto); err != nil {
		responderErro(c, err)
		return
	}

	c.JSON(http.StatusCreated, produto)
}

// Buscar retorna um produto pelo ID
func (h *ProdutoHandler) Buscar(c *gin.Context) {
	produto, err := h.useCase.Buscar(c.Request.Context(), c.Param("id"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, produto)
}

// Listar retorna os produtos, com filtro opcional por nome (?nome=)
func (h *ProdutoHandler) Listar(c *gin.Context) {
	produtos, err := h.useCase.Listar(c.Request.Context(), c.Query("nome"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"produtos": produtos, "total": len(produtos)})
}

// Atualizar grava um produto existente
func (h *ProdutoHandler) Atualizar(c *gin.Context) {
	var req CriarProdutoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categoria, err := ParseCategoria(req.Categoria)
	if err != nil {
		responderErro(c, err)
		return
	}

	produto := &Produto{
		ID:               c.Param("id"),
		Nome:             req.Nome,
		Quantidade:       req.Quantidade,
		Preco:            req.Preco,
		CidadeFabricacao: req.CidadeFabricacao,
		Categoria:        categoria,
	}
	if err := h.useCase.Atualizar(c.Request.Context(), produto); err != nil {
		responderErro(c, err)
		return
	}

	c.JSON(http.StatusOK, produto)
}

// Deletar remove um produto sem itens de venda no histórico
func (h *ProdutoHandler) Deletar(c *gin.Context) {
	if err := h.useCase.Deletar(c.Request.Context(), c.Param("id")); err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// VendedorHandler contém os handlers HTTP do cadastro de vendedores
type VendedorHandler struct {
	useCase *VendedorUseCase
}

// NewVendedorHandler cria uma nova instância de VendedorHandler
func NewVendedorHandler(useCase *VendedorUseCase) *VendedorHandler {
	return &VendedorHandler{useCase: useCase}
}

// Criar cadastra um novo vendedor. Sem o campo ativo, o vendedor
// entra ativo.
func (h *VendedorHandler) Criar(c *gin.Context) {
	var req CriarVendedorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ativo := true
	if req.Ativo != nil {
		ativo = *req.Ativo
	}
	vendedor := &Vendedor{
		Matricula: req.Matricula,
		Nome:      req.Nome,
		Email:     req.Email,
		Telefone:  req.Telefone,
		Ativo:     ativo,
	}
	if err := h.useCase.Criar(c.Request.Context(), vendedor); err != nil {
		responderErro(c, err)
		return
	}

	c.JSON(http.StatusCreated, vendedor)
}

// Buscar retorna um vendedor pela matrícula
func (h *VendedorHandler) Buscar(c *gin.Context) {
	vendedor, err := h.useCase.Buscar(c.Request.Context(), c.Param("matricula"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, vendedor)
}

// Listar retorna os vendedores, com filtro opcional por nome (?nome=)
func (h *VendedorHandler) Listar(c *gin.Context) {
	vendedores, err := h.useCase.Listar(c.Request.Context(), c.Query("nome"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendedores": vendedores, "total": len(vendedores)})
}

// Atualizar grava um vendedor existente
func (h *VendedorHandler) Atualizar(c *gin.Context) {
	var req AtualizarVendedorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vendedor := &Vendedor{
		Matricula: c.Param("matricula"),
		Nome:      req.Nome,
		Email:     req.Email,
		Telefone:  req.Telefone,
		Ativo:     req.Ativo,
	}
	if err := h.useCase.Atualizar(c.Request.Context(), vendedor); err != nil {
		responderErro(c, err)
		return
	}

	c.JSON(http.StatusOK, vendedor)
}

// Deletar remove um vendedor sem vendas atribuídas
func (h *VendedorHandler) Deletar(c *gin.Context) {
	if err := h.useCase.Deletar(c.Request.Context(), c.Param("matricula")); err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// CarrinhoHandler contém os handlers HTTP do carrinho
type CarrinhoHandler struct {
	useCase *CarrinhoUseCase
}

// NewCarrinhoHandler cria uma nova instância de CarrinhoHandler
func NewCarrinhoHandler(useCase *CarrinhoUseCase) *CarrinhoHandler {
	return &CarrinhoHandler{useCase: useCase}
}

// Abrir cria um carrinho vazio
func (h *CarrinhoHandler) Abrir(c *gin.Context) {
	carrinho := h.useCase.Abrir()
	c.JSON(http.StatusCreated, carrinho)
}

// Buscar retorna o carrinho com o subtotal corrente
func (h *CarrinhoHandler) Buscar(c *gin.Context) {
	carrinho, err := h.useCase.Buscar(c.Param("id"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"carrinho": carrinho,
		"subtotal": carrinho.Subtotal(),
	})
}

// AdicionarItem adiciona um produto ao carrinho
func (h *CarrinhoHandler) AdicionarItem(c *gin.Context) {
	var req AdicionarItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	carrinho, err := h.useCase.AdicionarItem(c.Request.Context(), c.Param("id"), req.ProdutoID, req.Quantidade)
	if err != nil {
		responderErro(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"carrinho": carrinho,
		"subtotal": carrinho.Subtotal(),
	})
}

// RemoverUltimo remove o item mais recente do carrinho
func (h *CarrinhoHandler) RemoverUltimo(c *gin.Context) {
	carrinho, err := h.useCase.RemoverUltimo(c.Param("id"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"carrinho": carrinho,
		"subtotal": carrinho.Subtotal(),
	})
}

// Descartar abandona o carrinho
func (h *CarrinhoHandler) Descartar(c *gin.Context) {
	if err := h.useCase.Descartar(c.Param("id")); err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "success"})
}

// VendaUseCaseInterface define a interface para o use case de vendas
type VendaUseCaseInterface interface {
	RegistrarVenda(ctx context.Context, req RegistrarVendaRequest) (*Venda, error)
	AutorizarVenda(ctx context.Context, vendaID string) (*Venda, error)
	CancelarVenda(ctx context.Context, vendaID string) (*Venda, error)
	ListarVendas(ctx context.Context, filtro FiltroVendas) ([]Venda, error)
	DetalharVenda(ctx context.Context, vendaID string) (*Venda, error)
}

// VendaHandler contém os handlers HTTP das vendas
type VendaHandler struct {
	useCase VendaUseCaseInterface
	tracer  trace.Tracer
}

// NewVendaHandler cria uma nova instância de VendaHandler
func NewVendaHandler(useCase VendaUseCaseInterface, tracer trace.Tracer) *VendaHandler {
	return &VendaHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// Registrar fecha um carrinho como venda PENDENTE
func (h *VendaHandler) Registrar(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "registrar_venda")
	defer span.End()

	var req FecharVendaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	forma, err := ParseFormaPagamento(req.FormaPagamento)
	if err != nil {
		span.RecordError(err)
		responderErro(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("carrinho_id", req.CarrinhoID),
		attribute.String("cliente_matricula", req.ClienteMatricula),
		attribute.String("vendedor_matricula", req.VendedorMatricula),
		attribute.String("forma_pagamento", string(forma)),
	)

	venda, err := h.useCase.RegistrarVenda(ctx, RegistrarVendaRequest{
		CarrinhoID:        req.CarrinhoID,
		ClienteMatricula:  req.ClienteMatricula,
		VendedorMatricula: req.VendedorMatricula,
		FormaPagamento:    forma,
	})
	if err != nil {
		span.RecordError(err)
		responderErro(c, err)
		return
	}

	span.SetAttributes(attribute.String("venda_id", venda.ID))
	c.JSON(http.StatusCreated, venda)
}

// Autorizar move a venda para AUTORIZADA
func (h *VendaHandler) Autorizar(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "autorizar_venda")
	defer span.End()

	vendaID := c.Param("id")
	span.SetAttributes(attribute.String("venda_id", vendaID))

	venda, err := h.useCase.AutorizarVenda(ctx, vendaID)
	if err != nil {
		span.RecordError(err)
		responderErro(c, err)
		return
	}

	c.JSON(http.StatusOK, venda)
}

// Cancelar move a venda para CANCELADA
func (h *VendaHandler) Cancelar(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "cancelar_venda")
	defer span.End()

	vendaID := c.Param("id")
	span.SetAttributes(attribute.String("venda_id", vendaID))

	venda, err := h.useCase.CancelarVenda(ctx, vendaID)
	if err != nil {
		span.RecordError(err)
		responderErro(c, err)
		return
	}

	c.JSON(http.StatusOK, venda)
}

// Listar lista vendas recentes. Aceita ?inicio=AAAA-MM-DD&fim=AAAA-MM-DD
// ou ?cliente=trecho, além de ?limite=N
func (h *VendaHandler) Listar(c *gin.Context) {
	filtro := FiltroVendas{Cliente: c.Query("cliente")}

	if inicio := c.Query("inicio"); inicio != "" {
		t, err := time.Parse("2006-01-02", inicio)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "inicio deve estar no formato AAAA-MM-DD"})
			return
		}
		filtro.Inicio = &t
	}
	if fim := c.Query("fim"); fim != "" {
		t, err := time.Parse("2006-01-02", fim)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fim deve estar no formato AAAA-MM-DD"})
			return
		}
		// fim é inclusivo: avança para o fim do dia
		t = t.Add(24*time.Hour - time.Nanosecond)
		filtro.Fim = &t
	}
	if (filtro.Inicio == nil) != (filtro.Fim == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inicio e fim devem ser informados juntos"})
		return
	}
	if filtro.Inicio != nil {
		if filtro.Fim.Before(*filtro.Inicio) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fim não pode ser anterior ao inicio"})
			return
		}
		// janela máxima de um ano
		if filtro.Fim.Sub(*filtro.Inicio) > 366*24*time.Hour {
			c.JSON(http.StatusBadRequest, gin.H{"error": "o período não pode passar de um ano"})
			return
		}
	}
	if limite := c.Query("limite"); limite != "" {
		n, err := strconv.Atoi(limite)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limite deve ser um inteiro positivo"})
			return
		}
		filtro.Limite = n
	}

	vendas, err := h.useCase.ListarVendas(c.Request.Context(), filtro)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendas": vendas, "total": len(vendas)})
}

// Detalhar retorna a venda com seus itens
func (h *VendaHandler) Detalhar(c *gin.Context) {
	venda, err := h.useCase.DetalharVenda(c.Request.Context(), c.Param("id"))
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, venda)
}

// HealthCheck verifica a saúde do serviço
func (h *VendaHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "vendas-service",
	})
}
