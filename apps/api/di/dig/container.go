package dig_container

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/asistente/apps/api/echo"
	"github.com/trezcool/asistente/core"
	"github.com/trezcool/asistente/core/activity"
	"github.com/trezcool/asistente/core/course"
	"github.com/trezcool/asistente/core/dashboard"
	"github.com/trezcool/asistente/core/feed"
	"github.com/trezcool/asistente/core/note"
	"github.com/trezcool/asistente/core/user"
	blobsvc "github.com/trezcool/asistente/services/blob"
	emailsvc "github.com/trezcool/asistente/services/email"
	feedsvc "github.com/trezcool/asistente/services/feed"
	logsvc "github.com/trezcool/asistente/services/logger"
	"github.com/trezcool/asistente/storage/database"
	inmemdb "github.com/trezcool/asistente/storage/database/inmem"
	sqlxrepos "github.com/trezcool/asistente/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Storage holds the opened backends so they can be closed on shutdown.
// SQL is nil with the in-memory engine.
type Storage struct {
	SQL   *sqlx.DB
	Blobs core.BlobStorage
}

func (s *Storage) Close() error {
	if c, ok := s.Blobs.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return errors.Wrap(err, "closing blob storage")
		}
	}
	if s.SQL != nil {
		return errors.Wrap(s.SQL.Close(), "closing database")
	}
	return nil
}

type Repositories struct {
	dig.Out
	Users      user.Repository
	Courses    course.Repository
	Containers activity.Containers
	Activities activity.Repository
	Notes      note.Repository
}

type serverParams struct {
	dig.In
	Conf         *core.Config
	Logger       core.Logger
	Validate     *validator.Validate
	Translator   ut.Translator
	UserSvc      user.Service
	CourseSvc    course.Service
	ActivitySvc  activity.Service
	NoteSvc      note.Service
	FeedSvc      feed.Service
	DashboardSvc dashboard.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newSQLDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

func newBlobStorage(conf *core.Config) (core.BlobStorage, error) {
	switch conf.Storage.Backend {
	case core.StorageB2:
		return blobsvc.NewB2Storage(context.Background(), conf)
	case core.StorageBolt:
		return blobsvc.NewBoltStorage(conf.Storage.BoltPath)
	default:
		return nil, errors.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
}

func newStorage(conf *core.Config, loggerParam DBLoggerParam) *Storage {
	var st Storage
	var err error

	if conf.Database.Engine != core.DBEngineInMem {
		if st.SQL, err = newSQLDB(conf); err != nil {
			loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
	}
	if st.Blobs, err = newBlobStorage(conf); err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up blob storage: %v", err), err)
	}
	return &st
}

func newRepositories(st *Storage) Repositories {
	if st.SQL == nil {
		db := inmemdb.NewDB()
		courses := inmemdb.NewCourseRepository(db)
		return Repositories{
			Users:      inmemdb.NewUserRepository(db),
			Courses:    courses,
			Containers: courses,
			Activities: inmemdb.NewActivityRepository(db),
			Notes:      inmemdb.NewNoteRepository(db),
		}
	}

	courses := sqlxrepos.NewCourseRepository(st.SQL)
	return Repositories{
		Users:      sqlxrepos.NewUserRepository(st.SQL),
		Courses:    courses,
		Containers: courses,
		Activities: sqlxrepos.NewActivityRepository(st.SQL),
		Notes:      sqlxrepos.NewNoteRepository(st.SQL),
	}
}

func newBlobs(st *Storage) core.BlobStorage {
	return st.Blobs
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newCourseService(repo course.Repository, notes note.Service, validate *validator.Validate) course.Service {
	return course.NewService(repo, notes, validate)
}

func newFeedClient(conf *core.Config) feed.Client {
	return feedsvc.NewClient(conf)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:         p.Conf,
		Logger:       p.Logger,
		Validate:     p.Validate,
		Translator:   p.Translator,
		UserSvc:      p.UserSvc,
		CourseSvc:    p.CourseSvc,
		ActivitySvc:  p.ActivitySvc,
		NoteSvc:      p.NoteSvc,
		FeedSvc:      p.FeedSvc,
		DashboardSvc: p.DashboardSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStorage))
	must(c.Provide(newRepositories))
	must(c.Provide(newBlobs))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(user.NewService))
	must(c.Provide(note.NewService))
	must(c.Provide(newCourseService))
	must(c.Provide(activity.NewService))
	must(c.Provide(dashboard.NewService))
	must(c.Provide(newFeedClient))
	must(c.Provide(feed.NewService))
	must(c.Provide(feedsvc.NewRefresher))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
