// Package app provides the dependency injection container for the application.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/runoshun/taskhub/internal/domain"
	"github.com/runoshun/taskhub/internal/infra/config"
	"github.com/runoshun/taskhub/internal/infra/logging"
	"github.com/runoshun/taskhub/internal/infra/sqlite"
	"github.com/runoshun/taskhub/internal/usecase"
)

// Config holds the application paths and the loaded settings.
type Config struct {
	App       *domain.Config // Merged config file contents
	Root      string         // Working directory taskhub was started in
	DataDir   string         // Path to .taskhub directory
	StorePath string         // Path to the SQLite database
}

// newConfig resolves paths for root. A relative [store] path is taken
// relative to root.
func newConfig(root string, appConfig *domain.Config) Config {
	dataDir := domain.LocalDataDir(root)
	storePath := appConfig.Store.Path
	switch {
	case storePath == "":
		storePath = domain.StorePath(dataDir)
	case !filepath.IsAbs(storePath):
		storePath = filepath.Join(root, storePath)
	}
	return Config{
		App:       appConfig,
		Root:      root,
		DataDir:   dataDir,
		StorePath: storePath,
	}
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Store         domain.Store
	Clock         domain.Clock
	TaskLogger    domain.Logger
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager

	// Pointer fields
	Logger *slog.Logger

	closers []io.Closer

	// Configuration
	Config Config
}

// New creates a new Container rooted at dir.
func New(dir string) (*Container, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	dataDir := domain.LocalDataDir(root)
	configLoader := config.NewLoader(dataDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, err
	}
	cfg := newConfig(root, appConfig)

	level := logging.ParseLevel(appConfig.Log.Level)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	store, err := sqlite.Open(cfg.StorePath, sqlite.Options{
		BusyTimeout: time.Duration(appConfig.Store.BusyTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}

	clock := domain.RealClock{}
	taskLogger := logging.New(cfg.DataDir, level).WithClock(clock).WithMirror(os.Stderr)

	return &Container{
		Store:         store,
		Clock:         clock,
		TaskLogger:    taskLogger,
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(dataDir),
		Logger:        logger,
		closers:       []io.Closer{taskLogger, store},
		Config:        cfg,
	}, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, store domain.Store, clock domain.Clock, taskLogger domain.Logger, logger *slog.Logger) *Container {
	if cfg.App == nil {
		cfg.App = domain.NewDefaultConfig()
	}
	return &Container{
		Store:      store,
		Clock:      clock,
		TaskLogger: taskLogger,
		Logger:     logger,
		Config:     cfg,
	}
}

// Close releases the store and log files.
func (c *Container) Close() error {
	var errs []error
	for _, cl := range c.closers {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}

// UseCase factory methods

// InitStoreUseCase returns a new InitStore use case.
func (c *Container) InitStoreUseCase() *usecase.InitStore {
	return usecase.NewInitStore(c.Store, c.Clock)
}

// ResolveActorUseCase returns a new ResolveActor use case.
func (c *Container) ResolveActorUseCase() *usecase.ResolveActor {
	return usecase.NewResolveActor(c.Store)
}

// CreateTaskUseCase returns a new CreateTask use case.
func (c *Container) CreateTaskUseCase() *usecase.CreateTask {
	return usecase.NewCreateTask(c.Store, c.Clock, c.TaskLogger)
}

// CreateTasksFromFileUseCase returns a new CreateTasksFromFile use case.
func (c *Container) CreateTasksFromFileUseCase() *usecase.CreateTasksFromFile {
	return usecase.NewCreateTasksFromFile(c.Store, c.Clock, c.TaskLogger)
}

// UpdateTaskUseCase returns a new UpdateTask use case.
func (c *Container) UpdateTaskUseCase() *usecase.UpdateTask {
	return usecase.NewUpdateTask(c.Store, c.Clock, c.TaskLogger)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Store, c.TaskLogger)
}

// AddDependencyUseCase returns a new AddDependency use case.
func (c *Container) AddDependencyUseCase() *usecase.AddDependency {
	return usecase.NewAddDependency(c.Store, c.Clock, c.TaskLogger)
}

// ListDependenciesUseCase returns a new ListDependencies use case.
func (c *Container) ListDependenciesUseCase() *usecase.ListDependencies {
	return usecase.NewListDependencies(c.Store)
}

// BulkUpdateUseCase returns a new BulkUpdate use case.
func (c *Container) BulkUpdateUseCase() *usecase.BulkUpdate {
	return usecase.NewBulkUpdate(c.Store, c.Clock, c.TaskLogger)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Store)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Store)
}

// TaskHistoryUseCase returns a new TaskHistory use case.
func (c *Container) TaskHistoryUseCase() *usecase.TaskHistory {
	return usecase.NewTaskHistory(c.Store)
}

// RegisterUserUseCase returns a new RegisterUser use case.
func (c *Container) RegisterUserUseCase() *usecase.RegisterUser {
	return usecase.NewRegisterUser(c.Store, c.Clock, c.TaskLogger)
}

// ListUsersUseCase returns a new ListUsers use case.
func (c *Container) ListUsersUseCase() *usecase.ListUsers {
	return usecase.NewListUsers(c.Store)
}

// TaskDistributionUseCase returns a new TaskDistribution use case.
func (c *Container) TaskDistributionUseCase() *usecase.TaskDistribution {
	return usecase.NewTaskDistribution(c.Store, c.Clock)
}

// TimelineUseCase returns a new Timeline use case.
func (c *Container) TimelineUseCase() *usecase.Timeline {
	return usecase.NewTimeline(c.Store, c.Clock)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}
