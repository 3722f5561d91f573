package application

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tictactoe-learner/internal/config"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
	"github.com/rocketscienceinc/tictactoe-learner/internal/policy"
	"github.com/rocketscienceinc/tictactoe-learner/internal/qtable"
	"github.com/rocketscienceinc/tictactoe-learner/internal/repository"
	"github.com/rocketscienceinc/tictactoe-learner/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-learner/internal/usecase"
)

const (
	ModeTrain        = "train"
	ModeTrainMinimax = "train-minimax"
	ModePlay         = "play"
	ModePlayHumans   = "play-humans"
	ModePlayMinimax  = "play-minimax"
	ModeEvaluate     = "evaluate"
)

const (
	DriverFile  = "file"
	DriverRedis = "redis"
)

var (
	ErrAddrNotFound  = errors.New("redis address string is empty")
	ErrUnknownMode   = errors.New("unknown mode")
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// RunApp - runs the application in the given mode.
func RunApp(logger *slog.Logger, conf *config.Config, mode string) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	hp := conf.Hyperparameters
	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint: gosec // it's ok

	repo, closeRepo, err := newRepository(ctx, log, conf, &hp, rng)
	if err != nil {
		return err
	}
	defer closeRepo()

	return New(logger, conf, repo, &hp, rng, os.Stdin, os.Stdout).Run(ctx, mode)
}

func newRepository(
	ctx context.Context,
	log *slog.Logger,
	conf *config.Config,
	hp *config.Hyperparameters,
	rng *rand.Rand,
) (repository.QTableRepository, func(), error) {
	switch conf.Storage.Driver {
	case DriverFile:
		return repository.NewFileRepository(conf.Storage.Dir, hp, rng), func() {}, nil
	case DriverRedis:
		if conf.Redis.Host == "" {
			return nil, nil, ErrAddrNotFound
		}

		client, err := storage.New(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		closeFn := func() {
			if err = client.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}

		return repository.NewRedisRepository(client, hp, rng), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDriver, conf.Storage.Driver)
	}
}

// App holds everything the modes share. Hyperparameters are shared with the
// stores loaded through repo, so decay reaches them.
type App struct {
	logger *slog.Logger
	conf   *config.Config
	repo   repository.QTableRepository
	hp     *config.Hyperparameters
	rng    *rand.Rand

	in  *bufio.Reader
	out io.Writer
}

func New(
	logger *slog.Logger,
	conf *config.Config,
	repo repository.QTableRepository,
	hp *config.Hyperparameters,
	rng *rand.Rand,
	in io.Reader,
	out io.Writer,
) *App {
	return &App{
		logger: logger,
		conf:   conf,
		repo:   repo,
		hp:     hp,
		rng:    rng,
		in:     bufio.NewReader(in),
		out:    out,
	}
}

func (that *App) Run(ctx context.Context, mode string) error {
	that.logger.Info("starting", "mode", mode, "storage", that.conf.Storage.Driver)

	switch mode {
	case ModeTrain:
		return that.train(ctx)
	case ModeTrainMinimax:
		return that.trainMinimax(ctx)
	case ModePlay:
		return that.play(ctx)
	case ModePlayHumans:
		return that.playHumans(ctx)
	case ModePlayMinimax:
		return that.playMinimax(ctx)
	case ModeEvaluate:
		return that.evaluate(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func (that *App) train(ctx context.Context) error {
	store, err := repository.LoadOrEmpty(ctx, that.repo, that.conf.Storage.Table, true, that.hp, that.rng)
	if err != nil {
		return err
	}

	maxer := policy.NewLearner(policy.LearnerMax, entity.Maximizer, that.hp, that.rng)
	miner := policy.NewLearner(policy.LearnerMin, entity.Minimizer, that.hp, that.rng)
	trainer := usecase.NewTrainer(that.logger, store, that.hp, that.conf.Training, maxer, miner, that.rng)

	if err = that.finish(trainer.Run(ctx)); err != nil {
		return err
	}

	return that.save(ctx, that.conf.Storage.Table, store)
}

func (that *App) trainMinimax(ctx context.Context) error {
	store, err := repository.LoadOrEmpty(ctx, that.repo, that.conf.Storage.Table, true, that.hp, that.rng)
	if err != nil {
		return err
	}

	cache, err := repository.LoadOrEmpty(ctx, that.repo, that.conf.Storage.MinimaxTable, true, that.hp, that.rng)
	if err != nil {
		return err
	}

	learner := policy.NewLearner(policy.LearnerMax, entity.Maximizer, that.hp, that.rng)
	solver := policy.NewSolver(policy.SolverID, entity.Minimizer, cache)
	trainer := usecase.NewTrainer(that.logger, store, that.hp, that.conf.MinimaxTraining, learner, solver, that.rng)

	if err = that.finish(trainer.Run(ctx)); err != nil {
		return err
	}

	if err = that.save(ctx, that.conf.Storage.Table, store); err != nil {
		return err
	}

	return that.save(ctx, that.conf.Storage.MinimaxTable, cache)
}

// finish lets an interrupted run through so that its progress is saved.
func (that *App) finish(err error) error {
	if errors.Is(err, context.Canceled) {
		that.logger.Warn("training cancelled, saving progress")
		return nil
	}

	return err
}

func (that *App) save(ctx context.Context, name string, table *qtable.QTable) error {
	if err := that.repo.Save(context.WithoutCancel(ctx), name, table); err != nil {
		return fmt.Errorf("could not save %s: %w", name, err)
	}

	that.logger.Info("q-table saved", "name", name, "entries", table.Len())

	return nil
}

func (that *App) play(ctx context.Context) error {
	that.hp.Exploration = 0

	store, err := repository.LoadOrEmpty(ctx, that.repo, that.conf.Storage.Table, that.conf.Storage.AllowEmpty, that.hp, that.rng)
	if err != nil {
		return err
	}

	fmt.Fprintf(that.out, "The q-table holds %d entries.\n", store.Len())

	human, console := policy.NewHumanPlayer("John", entity.Minimizer, that.in, that.out)
	learner := policy.NewLearner(policy.LearnerMax, entity.Maximizer, that.hp, that.rng)

	return that.playAgainst(ctx, store, human, console, learner)
}

func (that *App) playMinimax(ctx context.Context) error {
	cache, err := repository.LoadOrEmpty(ctx, that.repo, that.conf.Storage.MinimaxTable, that.conf.Storage.AllowEmpty, that.hp, that.rng)
	if err != nil {
		return err
	}

	human, console := policy.NewHumanPlayer("John", entity.Minimizer, that.in, that.out)
	solver := policy.NewSolver(policy.SolverID, entity.Maximizer, cache)

	return that.playAgainst(ctx, qtable.New(that.hp, that.rng), human, console, solver)
}

func (that *App) playHumans(ctx context.Context) error {
	alice, console := policy.NewHumanPlayer("Alice", entity.Maximizer, that.in, that.out)
	bob, _ := policy.NewHumanPlayer("Bob", entity.Minimizer, that.in, that.out)

	return that.playAgainst(ctx, qtable.New(that.hp, that.rng), alice, console, bob)
}

// playAgainst lets the human pick a mark and plays one match against opponent.
func (that *App) playAgainst(
	ctx context.Context,
	store *qtable.QTable,
	human *policy.Participant,
	console *policy.Human,
	opponent *policy.Participant,
) error {
	mark, err := console.ChooseMark()
	if err != nil {
		return fmt.Errorf("could not choose a mark: %w", err)
	}
	usecase.AssignMarks(human, opponent, mark)

	match, err := usecase.NewMatch(that.logger, that.out, store, human, opponent)
	if err != nil {
		return err
	}

	result, err := match.Play(ctx)
	if err != nil {
		return err
	}

	that.logger.Info("match finished", "outcome", result.Outcome.String(), "winner", result.Winner, "plies", result.Plies)

	return nil
}

func (that *App) evaluate(ctx context.Context) error {
	store, err := repository.LoadOrEmpty(ctx, that.repo, that.conf.Storage.Table, that.conf.Storage.AllowEmpty, that.hp, that.rng)
	if err != nil {
		return err
	}

	arena := usecase.NewArena(that.logger, store, that.conf.Evaluation.Workers, that.rng.Int63())

	tally, err := arena.Evaluate(ctx, that.conf.Evaluation.Games)
	if err != nil {
		return err
	}

	fmt.Fprintf(that.out, "%s against %s: %d wins, %d draws, %d losses\n",
		policy.LearnerMax, policy.SolverID, tally.Wins, tally.Draws, tally.Losses)

	return nil
}
