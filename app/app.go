package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"notesync/api"
	"notesync/config"
	"notesync/database"
	"notesync/platform"
	"notesync/services"
	"notesync/session"
	notesync "notesync/sync"
	"notesync/validator"
)

// App holds all client dependencies.
// This struct is the central point for dependency injection; there are no
// package-level instances.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *validator.Validator
	Session   *session.Store
	Notifier  platform.Notifier

	Auth     *services.AuthService
	Analysis *services.AnalysisService

	notesAPI  *api.NotesClient
	groupsAPI *api.GroupsClient
	tasksAPI  *api.TasksClient

	once  sync.Once
	db    *database.DB
	repos *Repositories
	err   error
}

// Repositories are the services backed by the local store.
type Repositories struct {
	Store  *database.Repository
	Notes  *services.NoteService
	Groups *services.GroupService
	Tasks  *services.TaskService
	Engine *notesync.Engine
	Worker *notesync.Worker
}

// New wires everything that does not need the local database. The database is
// opened on first use by DB or Repositories.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	notifier, err := platform.New(cfg.Platform, logger)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(cfg.PrefsPath, logger)
	client := api.NewClient(api.Config{
		BaseURL: cfg.APIURL,
		Tokens:  store,
		Timeout: cfg.HTTPTimeout,
		Logger:  logger,
	})
	v := validator.New()

	return &App{
		Config:    cfg,
		Logger:    logger,
		Validator: v,
		Session:   store,
		Notifier:  notifier,
		Auth:      services.NewAuthService(api.NewAuthClient(client, store), store, v, logger),
		Analysis:  services.NewAnalysisService(api.NewAnalysisClient(client), v, logger),
		notesAPI:  api.NewNotesClient(client),
		groupsAPI: api.NewGroupsClient(client),
		tasksAPI:  api.NewTasksClient(client),
	}, nil
}

// DB opens and migrates the local store once. Every call returns the same
// instance, or the same error. Cancelling the first caller's ctx does not
// abort the open.
func (a *App) DB(ctx context.Context) (*database.DB, error) {
	a.once.Do(func() { a.open(ctx) })
	return a.db, a.err
}

// Repositories returns the store-backed services, opening the store if needed.
func (a *App) Repositories(ctx context.Context) (*Repositories, error) {
	a.once.Do(func() { a.open(ctx) })
	return a.repos, a.err
}

func (a *App) open(ctx context.Context) {
	db, err := database.New(a.Config.DBPath, database.Options{
		DestructiveMigrationFallback: a.Config.DestructiveMigrationFallback,
		Logger:                       a.Logger,
	})
	if err != nil {
		a.err = fmt.Errorf("failed to open database: %w", err)
		return
	}
	if err := db.Migrate(context.WithoutCancel(ctx)); err != nil {
		db.Close()
		a.err = fmt.Errorf("failed to run migrations: %w", err)
		return
	}
	a.Logger.Info("database initialized", "path", a.Config.DBPath)

	repo := database.NewRepository(db)
	engine := notesync.NewEngine(repo, a.notesAPI, a.Logger)

	a.db = db
	a.repos = &Repositories{
		Store:  repo,
		Notes:  services.NewNoteService(repo, a.notesAPI, engine, a.Session, a.Validator, a.Logger),
		Groups: services.NewGroupService(repo, a.groupsAPI, a.Validator, a.Logger),
		Tasks:  services.NewTaskService(repo, a.tasksAPI, a.Notifier, a.Validator, a.Logger),
		Engine: engine,
		Worker: notesync.NewWorker(engine, notesync.WorkerConfig{
			BaseInterval: a.Config.SyncInterval,
			MaxInterval:  a.Config.SyncMaxInterval,
			Ready:        a.Auth.IsSignedIn,
			Logger:       a.Logger,
		}),
	}
}

// Close stops the sync worker and closes the store if it was opened.
func (a *App) Close() error {
	if a.repos != nil {
		a.repos.Worker.Stop()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
