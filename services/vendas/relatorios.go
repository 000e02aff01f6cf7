package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// limiteEstoqueBaixoPadrao é o corte padrão do relatório de estoque
const limiteEstoqueBaixoPadrao = 5

// RelatorioSocios resume a proporção de sócios na base de clientes
type RelatorioSocios struct {
	TotalClientes int             `json:"total_clientes"`
	TotalSocios   int             `json:"total_socios"`
	Percentual    decimal.Decimal `json:"percentual"`
}

// TotalVendedor resume as vendas atribuídas a um vendedor
type TotalVendedor struct {
	Matricula   string          `json:"matricula"`
	Nome        string          `json:"nome"`
	TotalVendas int             `json:"total_vendas"`
	ValorTotal  decimal.Decimal `json:"valor_total"`
}

// RelatorioRepository define as consultas de relatório
type RelatorioRepository interface {
	EstatisticasSocios(ctx context.Context) (*RelatorioSocios, error)
	EstoqueBaixo(ctx context.Context, limite int) ([]Produto, error)
	TotaisPorVendedor(ctx context.Context) ([]TotalVendedor, error)
}

// PostgresRelatorioRepository implementa RelatorioRepository usando PostgreSQL
type PostgresRelatorioRepository struct {
	db *pgxpool.Pool
}

// NewRelatorioRepository cria uma nova instância de PostgresRelatorioRepository
func NewRelatorioRepository(db *pgxpool.Pool) RelatorioRepository {
	return &PostgresRelatorioRepository{db: db}
}

// EstatisticasSocios conta clientes e sócios e calcula o percentual
func (r *PostgresRelatorioRepository) EstatisticasSocios(ctx context.Context) (*RelatorioSocios, error) {
	var rel RelatorioSocios
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE eh_socio),
		       COALESCE(ROUND(COUNT(*) FILTER (WHERE eh_socio) * 100.0 / NULLIF(COUNT(*), 0), 1), 0)
		FROM clientes
	`).Scan(&rel.TotalClientes, &rel.TotalSocios, &rel.Percentual)
	if err != nil {
		return nil, fmt.Errorf("failed to get estatísticas de sócios: %w", err)
	}
	return &rel, nil
}

// EstoqueBaixo lista os produtos com saldo até o limite, do mais crítico
// para o menos crítico
func (r *PostgresRelatorioRepository) EstoqueBaixo(ctx context.Context, limite int) ([]Produto, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+colunasProduto+" FROM produtos WHERE quantidade <= $1 ORDER BY quantidade, nome", limite)
	if err != nil {
		return nil, fmt.Errorf("failed to get estoque baixo: %w", err)
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

const queryTotaisPorVendedor = `
	SELECT vd.matricula, vd.nome,
	       COUNT(v.id),
	       COALESCE(SUM(v.valor_total), 0)
	FROM vendedores vd
	LEFT JOIN vendedor_vendas vv ON vv.vendedor_matricula = vd.matricula
	LEFT JOIN vendas v ON v.id = vv.venda_id AND v.status = 'AUTORIZADA'
	GROUP BY vd.matricula, vd.nome
	ORDER BY COALESCE(SUM(v.valor_total), 0) DESC, vd.nome
`

// TotaisPorVendedor soma as vendas autorizadas atribuídas a cada
// vendedor. Vendas pendentes e canceladas ficam de fora; vendedores
// sem vendas aparecem zerados.
func (r *PostgresRelatorioRepository) TotaisPorVendedor(ctx context.Context) ([]TotalVendedor, error) {
	rows, err := r.db.Query(ctx, queryTotaisPorVendedor)
	if err != nil {
		return nil, fmt.Errorf("failed to get totais por vendedor: %w", err)
	}
	defer rows.Close()

	var totais []TotalVendedor
	for rows.Next() {
		var t TotalVendedor
		if err := rows.Scan(&t.Matricula, &t.Nome, &t.TotalVendas, &t.ValorTotal); err != nil {
			return nil, fmt.Errorf("failed to scan total de vendedor: %w", err)
		}
		totais = append(totais, t)
	}
	return totais, rows.Err()
}

// RelatorioHandler contém os handlers HTTP dos relatórios
type RelatorioHandler struct {
	repository RelatorioRepository
}

// NewRelatorioHandler cria uma nova instância de RelatorioHandler
func NewRelatorioHandler(repository RelatorioRepository) *RelatorioHandler {
	return &RelatorioHandler{repository: repository}
}

// Socios retorna o resumo de sócios da base
func (h *RelatorioHandler) Socios(c *gin.Context) {
	rel, err := h.repository.EstatisticasSocios(c.Request.Context())
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, rel)
}

// EstoqueBaixo lista produtos com saldo até o limite (?limite=N, padrão 5)
func (h *RelatorioHandler) EstoqueBaixo(c *gin.Context) {
	limite := limiteEstoqueBaixoPadrao
	if v := c.Query("limite"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limite deve ser um inteiro positivo"})
			return
		}
		limite = n
	}

	produtos, err := h.repository.EstoqueBaixo(c.Request.Context(), limite)
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"limite":   limite,
		"produtos": produtos,
		"total":    len(produtos),
	})
}

// Vendedores retorna os totais de venda por vendedor
func (h *RelatorioHandler) Vendedores(c *gin.Context) {
	totais, err := h.repository.TotaisPorVendedor(c.Request.Context())
	if err != nil {
		responderErro(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendedores": totais, "total": len(totais)})
}
