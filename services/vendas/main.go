package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func main() {
	// Initialize OpenTelemetry
	tp, err := initTracer()
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	mp, err := initMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down meter: %v", err)
		}
	}()

	// Initialize database
	dbPool, err := initDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbPool.Close()

	if err := bootstrapSchema(context.Background(), dbPool); err != nil {
		log.Fatalf("Failed to bootstrap schema: %v", err)
	}

	// Initialize dependencies
	clienteRepo := NewClienteRepository(dbPool,
		getEnv("PROMO_TIME", "Mengão"),
		getEnv("PROMO_CIDADE", "Santos"),
	)
	produtoRepo := NewProdutoRepository(dbPool)
	vendedorRepo := NewVendedorRepository(dbPool)
	vendaRepo := NewVendaRepository(dbPool)
	relatorioRepo := NewRelatorioRepository(dbPool)
	carrinhos := NewCarrinhoStore()

	tracer := tp.Tracer("vendas-service")
	meter := mp.Meter("vendas-service")
	vendasRegistradas, err := meter.Int64Counter("vendas_registradas_total")
	if err != nil {
		log.Fatalf("Failed to create counter: %v", err)
	}

	elegibilidadeUC := NewElegibilidadeUseCase(clienteRepo)
	carrinhoUC := NewCarrinhoUseCase(carrinhos, produtoRepo)
	vendaUC := NewVendaUseCase(vendaRepo, produtoRepo, clienteRepo, vendedorRepo,
		elegibilidadeUC, carrinhos, tracer, vendasRegistradas)
	clienteUC := NewClienteUseCase(clienteRepo, vendaRepo)
	produtoUC := NewProdutoUseCase(produtoRepo, vendaRepo)
	vendedorUC := NewVendedorUseCase(vendedorRepo, vendaRepo)

	clienteHandler := NewClienteHandler(clienteUC, elegibilidadeUC)
	produtoHandler := NewProdutoHandler(produtoUC)
	vendedorHandler := NewVendedorHandler(vendedorUC)
	carrinhoHandler := NewCarrinhoHandler(carrinhoUC)
	vendaHandler := NewVendaHandler(vendaUC, tracer)
	relatorioHandler := NewRelatorioHandler(relatorioRepo)

	// Setup Gin router
	r := gin.Default()
	r.Use(otelgin.Middleware(getEnv("SERVICE_NAME", "vendas-service")))

	// Health check
	r.GET("/health", vendaHandler.HealthCheck)

	// Clientes
	r.POST("/api/clientes", clienteHandler.Criar)
	r.GET("/api/clientes", clienteHandler.Listar)
	r.GET("/api/clientes/:matricula", clienteHandler.Buscar)
	r.PUT("/api/clientes/:matricula", clienteHandler.Atualizar)
	r.DELETE("/api/clientes/:matricula", clienteHandler.Deletar)
	r.GET("/api/clientes/:matricula/elegibilidade", clienteHandler.Elegibilidade)

	// Produtos
	r.POST("/api/produtos", produtoHandler.Criar)
	r.GET("/api/produtos", produtoHandler.Listar)
	r.GET("/api/produtos/:id", produtoHandler.Buscar)
	r.PUT("/api/produtos/:id", produtoHandler.Atualizar)
	r.DELETE("/api/produtos/:id", produtoHandler.Deletar)

	// Vendedores
	r.POST("/api/vendedores", vendedorHandler.Criar)
	r.GET("/api/vendedores", vendedorHandler.Listar)
	r.GET("/api/vendedores/:matricula", vendedorHandler.Buscar)
	r.PUT("/api/vendedores/:matricula", vendedorHandler.Atualizar)
	r.DELETE("/api/vendedores/:matricula", vendedorHandler.Deletar)

	// Carrinhos
	r.POST("/api/carrinhos", carrinhoHandler.Abrir)
	r.GET("/api/carrinhos/:id", carrinhoHandler.Buscar)
	r.POST("/api/carrinhos/:id/itens", carrinhoHandler.AdicionarItem)
	r.DELETE("/api/carrinhos/:id/itens/ultimo", carrinhoHandler.RemoverUltimo)
	r.DELETE("/api/carrinhos/:id", carrinhoHandler.Descartar)

	// Vendas
	r.POST("/api/vendas", vendaHandler.Registrar)
	r.GET("/api/vendas", vendaHandler.Listar)
	r.GET("/api/vendas/:id", vendaHandler.Detalhar)
	r.POST("/api/vendas/:id/autorizar", vendaHandler.Autorizar)
	r.POST("/api/vendas/:id/cancelar", vendaHandler.Cancelar)

	// Relatórios
	r.GET("/api/relatorios/socios", relatorioHandler.Socios)
	r.GET("/api/relatorios/estoque-baixo", relatorioHandler.EstoqueBaixo)
	r.GET("/api/relatorios/vendedores", relatorioHandler.Vendedores)

	port := getEnv("PORT", "8080")
	log.Printf("🚀 Vendas Service listening on port %s", port)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func initDB() (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&pool_max_conns=25&pool_min_conns=5",
		getEnv("DATABASE_USER", "root"),
		getEnv("DATABASE_PASSWORD", "pass"),
		getEnv("DATABASE_HOST", "localhost"),
		getEnv("DATABASE_PORT", "5432"),
		getEnv("DATABASE_NAME", "atletica_db"),
	)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Configure connection pool
	config.MaxConns = 10
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Wait for database to be ready
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			log.Println("✅ Connected to atletica database with connection pool")
			return pool, nil
		}
		log.Printf("⏳ Waiting for database... (%d/30)", i+1)
		time.Sleep(1 * time.Second)
	}

	pool.Close()
	return nil, fmt.Errorf("failed to connect to database after 30 attempts")
}

func initTracer() (*sdktrace.TracerProvider, error) {
	ctx := context.Background()

	otlpEndpoint := getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(otlpEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(getEnv("SERVICE_NAME", "vendas-service")),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	otel.SetTracerProvider(tp)

	return tp, nil
}

func initMetrics() (*sdkmetric.MeterProvider, error) {
	ctx := context.Background()

	otlpEndpoint := getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(otlpEndpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(getEnv("SERVICE_NAME", "vendas-service")),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
