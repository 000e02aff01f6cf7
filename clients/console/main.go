package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// Cliente de console da atlética: roteiro de demonstração que exercita
// o serviço de vendas de ponta a ponta: cadastros, carrinho, fechamento,
// autorização e relatórios. Útil para smoke test de um ambiente recém subido.

type carrinhoResponse struct {
	Carrinho struct {
		ID string `json:"id"`
	} `json:"carrinho"`
	Subtotal string `json:"subtotal"`
}

type vendaResponse struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	ValorTotal       string `json:"valor_total"`
	DescontoAplicado bool   `json:"desconto_aplicado"`
	MotivoDesconto   string `json:"motivo_desconto"`
}

func main() {
	baseURL := getEnv("VENDAS_SERVICE_URL", "http://localhost:8080")

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	// Espera o serviço responder
	if err := aguardarServico(client); err != nil {
		log.Fatalf("❌ Serviço indisponível em %s: %v", baseURL, err)
	}

	// 1. Cadastros
	deveCriar(client, "/api/clientes", map[string]any{
		"matricula":  "202312345",
		"nome":       "Ana Silva",
		"email":      "ana.silva@usp.br",
		"telefone":   "(11) 98765-4321",
		"eh_socio":   true,
		"time":       "Flamengo",
		"cidade":     "Santos",
		"assiste_op": true,
	})
	deveCriar(client, "/api/vendedores", map[string]any{
		"matricula": "202399999",
		"nome":      "Bruno Costa",
		"email":     "bruno.costa@usp.br",
		"telefone":  "11912345678",
	})

	camisetaID := criarProduto(client, map[string]any{
		"nome":              "Camiseta da Atlética",
		"quantidade":        50,
		"preco":             "49.90",
		"cidade_fabricacao": "Santos",
		"categoria":         "ROUPA",
	})
	canecaID := criarProduto(client, map[string]any{
		"nome":              "Caneca One Piece",
		"quantidade":        3,
		"preco":             "25.90",
		"cidade_fabricacao": "Campinas",
		"categoria":         "ACESSORIO",
	})

	// 2. Carrinho: abre, adiciona, remove o último, adiciona de novo
	var carrinho carrinhoResponse
	resp, err := client.R().SetResult(&carrinho.Carrinho).Post("/api/carrinhos")
	if err != nil || resp.IsError() {
		log.Fatalf("❌ Falha ao abrir carrinho: %v %s", err, resp)
	}
	carrinhoID := carrinho.Carrinho.ID
	log.Printf("🛒 Carrinho aberto: %s", carrinhoID)

	adicionarItem(client, carrinhoID, camisetaID, 2)
	adicionarItem(client, carrinhoID, canecaID, 1)

	resp, err = client.R().Delete("/api/carrinhos/" + carrinhoID + "/itens/ultimo")
	if err != nil || resp.IsError() {
		log.Fatalf("❌ Falha ao remover último item: %v %s", err, resp)
	}
	log.Printf("↩️ Último item removido")

	adicionarItem(client, carrinhoID, canecaID, 2)

	// adição acima do estoque deve ser recusada sem alterar o carrinho
	resp, _ = client.R().
		SetBody(map[string]any{"produto_id": canecaID, "quantidade": 99}).
		Post("/api/carrinhos/" + carrinhoID + "/itens")
	log.Printf("ℹ️ Tentativa acima do estoque: HTTP %d (%s)", resp.StatusCode(), resp.String())

	// 3. Fecha a venda
	var venda vendaResponse
	resp, err = client.R().
		SetBody(map[string]any{
			"carrinho_id":        carrinhoID,
			"cliente_matricula":  "202312345",
			"vendedor_matricula": "202399999",
			"forma_pagamento":    "PIX",
		}).
		SetResult(&venda).
		Post("/api/vendas")
	if err != nil || resp.IsError() {
		log.Fatalf("❌ Falha ao registrar venda: %v %s", err, resp)
	}
	log.Printf("✅ Venda %s registrada: status=%s total=%s desconto=%v (%s)",
		venda.ID, venda.Status, venda.ValorTotal, venda.DescontoAplicado, venda.MotivoDesconto)

	// 4. Autoriza e tenta autorizar de novo (deve dar conflito)
	resp, err = client.R().SetResult(&venda).Post("/api/vendas/" + venda.ID + "/autorizar")
	if err != nil || resp.IsError() {
		log.Fatalf("❌ Falha ao autorizar venda: %v %s", err, resp)
	}
	log.Printf("✅ Venda autorizada: status=%s", venda.Status)

	resp, _ = client.R().Post("/api/vendas/" + venda.ID + "/autorizar")
	log.Printf("ℹ️ Segunda autorização: HTTP %d (%s)", resp.StatusCode(), resp.String())

	// 5. Relatórios
	for _, rota := range []string{
		"/api/relatorios/socios",
		"/api/relatorios/estoque-baixo",
		"/api/relatorios/vendedores",
	} {
		resp, err := client.R().Get(rota)
		if err != nil || resp.IsError() {
			log.Fatalf("❌ Falha no relatório %s: %v %s", rota, err, resp)
		}
		log.Printf("📊 %s: %s", rota, resp.String())
	}

	log.Printf("🏁 Roteiro completo")
}

func aguardarServico(client *resty.Client) error {
	var err error
	for i := 0; i < 30; i++ {
		var resp *resty.Response
		resp, err = client.R().Get("/health")
		if err == nil && resp.IsSuccess() {
			return nil
		}
		log.Printf("⏳ Waiting for service... (%d/30)", i+1)
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("health check failed: %w", err)
}

func adicionarItem(client *resty.Client, carrinhoID, produtoID string, quantidade int) {
	var carrinho carrinhoResponse
	resp, err := client.R().
		SetBody(map[string]any{"produto_id": produtoID, "quantidade": quantidade}).
		SetResult(&carrinho).
		Post("/api/carrinhos/" + carrinhoID + "/itens")
	if err != nil || resp.IsError() {
		log.Fatalf("❌ Falha ao adicionar item %s: %v %s", produtoID, err, resp)
	}
	log.Printf("🛒 Item adicionado (%dx %s), subtotal=%s", quantidade, produtoID, carrinho.Subtotal)
}

// deveCriar posta o cadastro e aceita 201 ou 409 (já existia de uma
// execução anterior do roteiro)
func deveCriar(client *resty.Client, rota string, corpo map[string]any) {
	resp, err := client.R().SetBody(corpo).Post(rota)
	if err != nil {
		log.Fatalf("❌ Falha em %s: %v", rota, err)
	}
	if resp.IsError() && resp.StatusCode() != 409 {
		log.Fatalf("❌ Falha em %s: HTTP %d (%s)", rota, resp.StatusCode(), resp.String())
	}
	log.Printf("✅ POST %s: HTTP %d", rota, resp.StatusCode())
}

// criarProduto cadastra o produto e retorna seu id. Num 409 de
// execução anterior, recupera o id pelo nome.
func criarProduto(client *resty.Client, corpo map[string]any) string {
	var produto struct {
		ID string `json:"id"`
	}
	resp, err := client.R().SetBody(corpo).SetResult(&produto).Post("/api/produtos")
	if err != nil {
		log.Fatalf("❌ Falha ao criar produto: %v", err)
	}
	if resp.IsSuccess() {
		log.Printf("✅ Produto criado: %s (%s)", corpo["nome"], produto.ID)
		return produto.ID
	}
	if resp.StatusCode() != 409 {
		log.Fatalf("❌ Falha ao criar produto: HTTP %d (%s)", resp.StatusCode(), resp.String())
	}

	var listagem struct {
		Produtos []struct {
			ID string `json:"id"`
		} `json:"produtos"`
	}
	resp, err = client.R().
		SetQueryParam("nome", corpo["nome"].(string)).
		SetResult(&listagem).
		Get("/api/produtos")
	if err != nil || resp.IsError() || len(listagem.Produtos) == 0 {
		log.Fatalf("❌ Produto %s existe mas não foi localizado: %v %s", corpo["nome"], err, resp)
	}
	log.Printf("ℹ️ Produto %s já existia: %s", corpo["nome"], listagem.Produtos[0].ID)
	return listagem.Produtos[0].ID
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
