package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/sweep"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envはあれば読む（本番は環境変数直渡し）
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Address{},
		&model.Product{},
		&model.Shipping{},
		&model.Discount{},
		&model.Cart{},
		&model.OrderItem{},
		&model.AuditLog{},
	); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	discountRepo := infraRepo.NewDiscountGormRepository(gormDB)
	shippingRepo := infraRepo.NewShippingGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := usecase.NewBcryptPasswordHasher(12)
	verifier := usecase.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 15 * time.Minute,
	}

	//カート確定の条件
	policy := model.FinalizePolicy{
		MinimumCartPrice: cfg.MinimumCartPriceToFinalize,
		Start:            cfg.FinalizeStart,
		End:              cfg.FinalizeEnd,
	}

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, cartRepo, hasher, verifier, issuer, clock)
	catalogUC := usecase.NewCatalogUsecase(productRepo, discountRepo, shippingRepo, auditRepo, clock)
	cartUC := usecase.NewCartUsecase(cartRepo, orderItemRepo, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(
		txManager,
		cartRepo,
		addressRepo,
		validator.DefaultDiscountRules(),
		policy,
		clock,
		idGen,
		logger,
	)
	orderUC := usecase.NewOrderUsecase(cartRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		Product:      handler.NewProductHandler(catalogUC),
		Cart:         handler.NewCartHandler(cartUC),
		Checkout:     handler.NewCheckoutHandler(checkoutUC),
		Order:        handler.NewOrderHandler(orderUC),
		Address:      handler.NewAddressHandler(addressUC),
		AdminCatalog: handler.NewAdminCatalogHandler(catalogUC),
	}

	//期限切れpendingのキャンセルを裏で回す
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := sweep.NewSweeper(
		cartRepo,
		time.Duration(cfg.OrderExpireSeconds)*time.Second,
		time.Duration(cfg.SweepIntervalSeconds)*time.Second,
		logger,
	)
	go sweeper.Run(ctx)

	//Server起動
	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := server.Start(cfg, logger, handlers); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
