package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ddl cria as tabelas na ordem das dependências. O CHECK de quantidade
// é a última linha de defesa contra estoque negativo, por baixo do
// decremento condicional.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS clientes (
		matricula  VARCHAR(20) PRIMARY KEY,
		nome       VARCHAR(100) NOT NULL,
		email      VARCHAR(255) NOT NULL UNIQUE,
		telefone   VARCHAR(11) NOT NULL,
		eh_socio   BOOLEAN NOT NULL DEFAULT FALSE,
		time       VARCHAR(50) NOT NULL,
		cidade     VARCHAR(50) NOT NULL,
		assiste_op BOOLEAN NOT NULL DEFAULT FALSE,
		criado_em  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS produtos (
		id                VARCHAR(36) PRIMARY KEY,
		nome              VARCHAR(100) NOT NULL,
		quantidade        INTEGER NOT NULL CHECK (quantidade >= 0),
		preco             NUMERIC(10,2) NOT NULL CHECK (preco > 0),
		cidade_fabricacao VARCHAR(50) NOT NULL,
		categoria         VARCHAR(20) NOT NULL DEFAULT 'GERAL',
		criado_em         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		atualizado_em     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_produtos_nome ON produtos (LOWER(nome))`,
	`CREATE TABLE IF NOT EXISTS vendedores (
		matricula VARCHAR(20) PRIMARY KEY,
		nome      VARCHAR(100) NOT NULL,
		email     VARCHAR(255) NOT NULL UNIQUE,
		telefone  VARCHAR(11) NOT NULL,
		ativo     BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS vendas (
		id                VARCHAR(36) PRIMARY KEY,
		cliente_matricula VARCHAR(20) NOT NULL REFERENCES clientes (matricula),
		valor_total       NUMERIC(10,2) NOT NULL,
		forma_pagamento   VARCHAR(10) NOT NULL,
		data_venda        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		status            VARCHAR(10) NOT NULL DEFAULT 'PENDENTE',
		desconto_aplicado BOOLEAN NOT NULL DEFAULT FALSE,
		motivo_desconto   VARCHAR(50),
		valor_desconto    NUMERIC(10,2)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vendas_data ON vendas (data_venda DESC)`,
	`CREATE TABLE IF NOT EXISTS itens_venda (
		id             VARCHAR(36) PRIMARY KEY,
		venda_id       VARCHAR(36) NOT NULL REFERENCES vendas (id),
		produto_id     VARCHAR(36) NOT NULL REFERENCES produtos (id),
		quantidade     INTEGER NOT NULL CHECK (quantidade > 0),
		valor_unitario NUMERIC(10,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vendedor_vendas (
		vendedor_matricula VARCHAR(20) NOT NULL REFERENCES vendedores (matricula),
		venda_id           VARCHAR(36) NOT NULL UNIQUE REFERENCES vendas (id),
		autorizada_em      TIMESTAMPTZ
	)`,
}

// bootstrapSchema garante as tabelas na subida do serviço
func bootstrapSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range ddl {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to bootstrap schema: %w", err)
		}
	}
	return nil
}
