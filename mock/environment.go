package mock

import (
	"context"
	"sync"
	"testing"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/testutil"
	"github.com/evergreen-ci/pail"
	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/queue"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/send"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// this is just a hack to ensure that compile breaks clearly if the
// mock implementation diverges from the interface
var _ devcamper.Environment = &Environment{}

type Environment struct {
	DevcamperSettings *devcamper.Settings
	MongoClient       *mongo.Client
	Local             amboy.Queue
	UploadBucket      pail.Bucket
	EmailSender       *send.InternalSender
	Closers           map[string]func(context.Context) error

	mu sync.RWMutex
}

// Configure fills in every service the settings do not already provide. A
// database connection is only made when the settings carry a url.
func (e *Environment) Configure(ctx context.Context) error {
	if e.DevcamperSettings == nil {
		return errors.New("settings must be set")
	}
	if e.Closers == nil {
		e.Closers = map[string]func(context.Context) error{}
	}

	if e.MongoClient == nil && e.DevcamperSettings.Database.Url != "" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(e.DevcamperSettings.Database.Url).SetConnectTimeout(5*time.Second))
		if err != nil {
			return errors.Wrap(err, "connecting to the database")
		}
		e.MongoClient = client
		e.Closers["database"] = client.Disconnect
	}

	if e.UploadBucket == nil {
		bucket, err := pail.NewLocalBucket(pail.LocalOptions{Path: e.DevcamperSettings.Upload.Path})
		if err != nil {
			return errors.Wrap(err, "opening upload bucket")
		}
		e.UploadBucket = bucket
	}

	if e.Local == nil {
		e.Local = queue.NewLocalLimitedSize(2, 128)
		if err := e.Local.Start(ctx); err != nil {
			return errors.Wrap(err, "starting local queue")
		}
	}

	if e.EmailSender == nil {
		e.EmailSender = send.MakeInternalLogger()
	}

	return nil
}

func (e *Environment) Settings() *devcamper.Settings { return e.DevcamperSettings }
func (e *Environment) Client() *mongo.Client         { return e.MongoClient }
func (e *Environment) Bucket() pail.Bucket           { return e.UploadBucket }
func (e *Environment) LocalQueue() amboy.Queue       { return e.Local }

func (e *Environment) DB() *mongo.Database {
	if e.MongoClient == nil {
		return nil
	}
	return e.MongoClient.Database(e.DevcamperSettings.Database.DB)
}

func (e *Environment) GetSender(key devcamper.SenderKey) (send.Sender, error) {
	if key != devcamper.SenderEmail || e.EmailSender == nil {
		return nil, errors.Errorf("sender '%s' is not configured", key)
	}
	return e.EmailSender, nil
}

func (e *Environment) RegisterCloser(name string, closer func(context.Context) error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.Closers == nil {
		e.Closers = map[string]func(context.Context) error{}
	}
	e.Closers[name] = closer
}

func (e *Environment) Close(ctx context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	catcher := grip.NewBasicCatcher()
	if e.Local != nil {
		e.Local.Close(ctx)
	}
	for name, closer := range e.Closers {
		catcher.Wrapf(closer(ctx), "running closer '%s'", name)
	}
	return catcher.Resolve()
}

// NewEnvironment returns a configured environment without a database and
// installs it as the global environment for the duration of the test.
func NewEnvironment(ctx context.Context, t *testing.T) *Environment {
	env := &Environment{DevcamperSettings: testutil.TestConfig(t)}
	env.DevcamperSettings.Database.Url = ""
	require.NoError(t, env.Configure(ctx))
	install(t, env)
	return env
}

// NewDBEnvironment is NewEnvironment backed by a MongoDB server. The test
// is skipped when no server can be started.
func NewDBEnvironment(ctx context.Context, t *testing.T) *Environment {
	settings := testutil.TestConfig(t)
	settings.Database.Url = testutil.StartMongoDB(t)

	env := &Environment{DevcamperSettings: settings}
	require.NoError(t, env.Configure(ctx))
	require.NoError(t, env.Client().Ping(ctx, nil), "pinging the test database")
	install(t, env)
	return env
}

func install(t *testing.T, env *Environment) {
	prev := devcamper.GetEnvironment()
	devcamper.SetEnvironment(env)
	t.Cleanup(func() {
		devcamper.SetEnvironment(prev)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := env.Close(ctx); err != nil {
			t.Logf("closing test environment: %v", err)
		}
	})
}
