package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"

	"lending-backend/internal/applications"
	"lending-backend/internal/assessments"
	googleauth "lending-backend/internal/auth"
	"lending-backend/internal/clients"
	"lending-backend/internal/documents"
	"lending-backend/internal/queue"
	"lending-backend/internal/scoring"
	"lending-backend/internal/shared/config"
	"lending-backend/internal/shared/server"
	"lending-backend/internal/shared/storage/db"
	"lending-backend/internal/shared/storage/object"
	localstore "lending-backend/internal/shared/storage/object/local"
	s3store "lending-backend/internal/shared/storage/object/s3"
	"lending-backend/internal/usage"
	"lending-backend/internal/users"
)

const (
	uploadsDefaultRegion = "us-east-1"
	uploadsDefaultPrefix = "documents/"
)

// App holds shared dependencies for the API and worker entrypoints.
type App struct {
	Config              config.Config
	Router              *gin.Engine
	DB                  *sql.DB
	Store               object.ObjectStore
	Queue               queue.Client
	UploadsPresign      *s3.PresignClient
	UploadsBucket       string
	UploadsPrefix       string
	ClientsRepo         clients.Repo
	ApplicationsRepo    applications.Repo
	AssessmentsRepo     assessments.Repo
	DocumentsRepo       documents.DocumentsRepo
	UsersRepo           users.Repo
	ClientsService      *clients.Service
	ApplicationsService *applications.Service
	AssessmentsService  *assessments.Service
	AssessmentProcessor AssessmentProcessor
	DocumentsService    *documents.Service
	UsageService        *usage.Service
	UsersService        *users.Service
	ClientsHandler      *clients.Handler
	ApplicationsHandler *applications.Handler
	AssessmentsHandler  *assessments.Handler
	DocumentsHandler    *documents.Handler
	UsageHandler        *usage.Handler
	UsersHandler        *users.Handler
	GoogleAuth          *googleauth.GoogleService
}

// AssessmentProcessor allows callers to override assessment processing for tests.
type AssessmentProcessor interface {
	ProcessAssessment(ctx context.Context, assessmentID string) error
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	presign, bucket, prefix, err := buildUploadsPresign(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:         cfg,
		Router:         nil,
		DB:             sqlDB,
		Store:          store,
		Queue:          queueClient,
		UploadsPresign: presign,
		UploadsBucket:  bucket,
		UploadsPrefix:  prefix,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:              app.Config,
		ClientsHandler:      app.ClientsHandler,
		ApplicationsHandler: app.ApplicationsHandler,
		AssessmentsHandler:  app.AssessmentsHandler,
		DocumentsHandler:    app.DocumentsHandler,
		UsageHandler:        app.UsageHandler,
		UsersHandler:        app.UsersHandler,
		GoogleAuth:          app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.QueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildUploadsPresign(ctx context.Context) (*s3.PresignClient, string, string, error) {
	bucket := strings.TrimSpace(os.Getenv("UPLOADS_S3_BUCKET"))
	if bucket == "" {
		return nil, "", "", nil
	}

	region := strings.TrimSpace(os.Getenv("AWS_REGION"))
	if region == "" {
		region = uploadsDefaultRegion
	}
	prefix := strings.TrimSpace(os.Getenv("UPLOADS_S3_PREFIX"))
	if prefix == "" {
		prefix = uploadsDefaultPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, "", "", fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return s3.NewPresignClient(client), bucket, prefix, nil
}

func buildServices(app *App) error {
	var clientRepo clients.Repo
	var appRepo applications.Repo
	var assessmentRepo assessments.Repo
	var docRepo documents.DocumentsRepo
	var userRepo users.Repo

	if app.DB != nil {
		clientRepo = &clients.PGRepo{DB: app.DB}
		appRepo = &applications.PGRepo{DB: app.DB}
		assessmentRepo = &assessments.PGRepo{DB: app.DB}
		docRepo = &documents.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		clientRepo = clients.NewMemoryRepo()
		appRepo = applications.NewMemoryRepo()
		assessmentRepo = assessments.NewMemoryRepo()
		docRepo = documents.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	var usageSvc *usage.Service
	if app.DB != nil {
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB))
	} else {
		usageSvc = usage.NewService()
	}

	clientSvc := clients.NewService(clientRepo)

	appSvc := &applications.Service{
		Repo:        appRepo,
		Clients:     clientSvc,
		MonthlyRate: app.Config.MonthlyRate,
	}

	assessmentSvc := &assessments.Service{
		Repo:           assessmentRepo,
		Apps:           appSvc,
		Usage:          usageSvc,
		Queue:          app.Queue,
		Synth:          scoring.NewSynthesizer(scoring.DefaultLexicon()),
		ScoringVersion: app.Config.ScoringVersion,
	}

	docSvc := &documents.Service{
		Store:           app.Store,
		Repo:            docRepo,
		StorageProvider: app.Config.ObjectStoreType,
	}
	assessmentSvc.Docs = docSvc

	userSvc := users.NewService(userRepo)
	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.ClientsRepo = clientRepo
	app.ApplicationsRepo = appRepo
	app.AssessmentsRepo = assessmentRepo
	app.DocumentsRepo = docRepo
	app.UsersRepo = userRepo
	app.ClientsService = clientSvc
	app.ApplicationsService = appSvc
	app.AssessmentsService = assessmentSvc
	app.AssessmentProcessor = assessmentSvc
	app.DocumentsService = docSvc
	app.UsageService = usageSvc
	app.UsersService = userSvc
	app.ClientsHandler = clients.NewHandler(clientSvc)
	app.ApplicationsHandler = applications.NewHandler(appSvc)
	app.AssessmentsHandler = assessments.NewHandler(assessmentSvc)
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.UsageHandler = usage.NewHandler(usageSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.GoogleAuth = googleAuthSvc

	if app.ApplicationsHandler == nil || app.AssessmentsHandler == nil || app.UsageHandler == nil {
		return errors.New("failed to initialize handlers")
	}

	return nil
}
