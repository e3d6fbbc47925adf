package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v5"
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

func newJWTIssuer(secret string) *jwtIssuer {
	//アクセストークン
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: 15 * time.Minute,
	}
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"tv":   tokenVersion,
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
	//.envは無くても動く（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.GoEnv == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.Ticket{},
		&model.TicketMessage{},
		&model.Review{},
		&model.Resource{},
		&model.ServiceRequest{},
		&model.AuditLog{},
	); err != nil {
		logger.Fatal("auto migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	ticketRepo := infraRepo.NewTicketGormRepository(gormDB)
	ticketMsgRepo := infraRepo.NewTicketMessageGormRepository(gormDB)
	reviewRepo := infraRepo.NewReviewGormRepository(gormDB)
	resourceRepo := infraRepo.NewResourceGormRepository(gormDB)
	srRepo := infraRepo.NewServiceRequestGormRepository(gormDB)
	entitlementRepo := infraRepo.NewEntitlementGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := usecase.NewBcryptPasswordHasher(12)
	verifier := usecase.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := newJWTIssuer(cfg.JWTSecret)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, hasher, verifier, issuer, clock, logger)
	productUC := usecase.NewProductUsecase(txManager, productRepo, clock, logger)
	orderUC := usecase.NewOrderUsecase(txManager, userRepo, idGen, clock, logger)
	ticketUC := usecase.NewTicketUsecase(txManager, idGen, clock, logger)
	libraryUC := usecase.NewLibraryUsecase(entitlementRepo, productRepo, logger)
	notificationUC := usecase.NewNotificationUsecase(orderRepo, ticketRepo, ticketMsgRepo, logger)
	reviewUC := usecase.NewReviewUsecase(reviewRepo, productRepo, clock, logger)
	resourceUC := usecase.NewResourceUsecase(resourceRepo, logger)
	srUC := usecase.NewServiceRequestUsecase(srRepo, idGen, clock, logger)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, auditRepo, clock, logger)
	auditUC := usecase.NewAuditLogUsecase(auditRepo, logger)

	//Server + Handler登録
	e := server.New(cfg, logger)

	handler.NewHealthHandler(gormDB).RegisterRoutes(e)
	handler.NewAuthHandler(authUC).RegisterRoutes(e)
	handler.NewProductHandler(productUC).RegisterRoutes(e)
	handler.NewAdminProductHandler(productUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewOrderHandler(orderUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewTicketHandler(ticketUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewLibraryHandler(libraryUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewNotificationHandler(notificationUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewReviewHandler(reviewUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewResourceHandler(resourceUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewServiceRequestHandler(srUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewAdminUserHandler(adminUserUC).RegisterRoutes(e, cfg, userRepo)
	handler.NewAdminAuditLogHandler(auditUC).RegisterRoutes(e, cfg, userRepo)

	addr := ":" + cfg.Port
	logger.Info("server starting", zap.String("addr", addr))
	if err := server.Start(e, addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
