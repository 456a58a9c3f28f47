package devcamper

import (
	"context"
	"sync"
	"time"

	"github.com/evergreen-ci/pail"
	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/pool"
	"github.com/mongodb/amboy/queue"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/mongodb/grip/message"
	"github.com/mongodb/grip/send"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

var (
	globalEnv     Environment
	globalEnvLock *sync.RWMutex
)

func init() { globalEnvLock = &sync.RWMutex{} }

// GetEnvironment returns the global application level environment. It must
// be configured with SetEnvironment before use.
//
// Prefer passing the Environment explicitly. The store layer and amboy jobs
// reach for the global because they are constructed without one.
func GetEnvironment() Environment {
	globalEnvLock.RLock()
	defer globalEnvLock.RUnlock()

	return globalEnv
}

func SetEnvironment(env Environment) {
	globalEnvLock.Lock()
	defer globalEnvLock.Unlock()

	globalEnv = env
}

// SenderKey names one of the environment's notification senders.
type SenderKey int

const (
	SenderEmail SenderKey = iota
)

func (k SenderKey) String() string {
	switch k {
	case SenderEmail:
		return "email"
	default:
		return "<unknown>"
	}
}

// Environment provides application-level services: configuration, the
// database, upload storage, a background queue and notification senders.
type Environment interface {
	// Settings is not safe for concurrent modification.
	Settings() *Settings

	Client() *mongo.Client
	DB() *mongo.Database

	// Bucket stores uploaded photos and documents.
	Bucket() pail.Bucket

	// LocalQueue is an in-memory queue for work that may finish after
	// the request that created it. Jobs do not survive a restart.
	LocalQueue() amboy.Queue

	// GetSender provides a grip Sender configured from the settings.
	// Messages sent through it must carry their own recipients.
	GetSender(SenderKey) (send.Sender, error)

	// RegisterCloser adds a function to be called by Close. Names must
	// be unique.
	RegisterCloser(string, func(context.Context) error)
	// Close calls all registered closers.
	Close(context.Context) error
}

// NewEnvironment validates the settings, connects to the database, opens the
// upload bucket, and starts the local queue.
func NewEnvironment(ctx context.Context, settings *Settings) (Environment, error) {
	if settings == nil {
		return nil, errors.New("settings cannot be nil")
	}
	if err := settings.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating settings")
	}

	e := &envState{
		settings: settings,
		senders:  map[SenderKey]send.Sender{},
		closers:  map[string]func(context.Context) error{},
	}

	catcher := grip.NewBasicCatcher()
	catcher.Add(e.initDB(ctx))
	catcher.Add(e.initBucket(ctx))
	catcher.Add(e.initSenders())
	catcher.Add(e.createLocalQueue(ctx))
	if catcher.HasErrors() {
		return nil, errors.WithStack(catcher.Resolve())
	}

	return e, nil
}

type envState struct {
	settings   *Settings
	client     *mongo.Client
	bucket     pail.Bucket
	localQueue amboy.Queue
	senders    map[SenderKey]send.Sender
	closers    map[string]func(context.Context) error
	mu         sync.RWMutex
}

func (e *envState) initDB(ctx context.Context) error {
	conf := e.settings.Database
	opts := options.Client().ApplyURI(conf.Url).SetConnectTimeout(10 * time.Second)
	if conf.WriteConcern.W > 0 {
		journal := conf.WriteConcern.J
		opts.SetWriteConcern(&writeconcern.WriteConcern{
			W:        conf.WriteConcern.W,
			Journal:  &journal,
			WTimeout: time.Duration(conf.WriteConcern.WTimeout) * time.Millisecond,
		})
	}

	var err error
	e.client, err = mongo.Connect(ctx, opts)
	if err != nil {
		return errors.Wrap(err, "connecting to the database")
	}

	e.closers["database"] = func(ctx context.Context) error {
		return errors.Wrap(e.client.Disconnect(ctx), "disconnecting from the database")
	}

	return nil
}

func (e *envState) initBucket(ctx context.Context) error {
	bucket, err := pail.NewLocalBucket(pail.LocalOptions{
		Path: e.settings.Upload.Path,
	})
	if err != nil {
		return errors.Wrapf(err, "opening upload bucket at '%s'", e.settings.Upload.Path)
	}
	if err = bucket.Check(ctx); err != nil {
		return errors.Wrapf(err, "checking upload bucket at '%s'", e.settings.Upload.Path)
	}
	e.bucket = bucket
	return nil
}

func (e *envState) initSenders() error {
	levelInfo := send.LevelInfo{
		Default:   level.Notice,
		Threshold: level.Notice,
	}

	if !e.settings.SMTP.Configured() {
		grip.Warning(message.Fields{
			"message": "smtp is not configured, outgoing email is disabled",
		})
		return nil
	}

	smtp := e.settings.SMTP
	opts := send.SMTPOptions{
		Name:              "devcamper",
		Server:            smtp.Server,
		Port:              smtp.Port,
		UseSSL:            smtp.UseSSL,
		Username:          smtp.Username,
		Password:          smtp.Password,
		From:              smtp.FromEmail,
		PlainTextContents: true,
		NameAsSubject:     true,
	}
	// The options require a default recipient. Every message sent by the
	// service names its own.
	if err := opts.AddRecipient(smtp.FromName, smtp.FromEmail); err != nil {
		return errors.Wrap(err, "setting up email sender")
	}
	sender, err := send.NewSMTPLogger(&opts, levelInfo)
	if err != nil {
		return errors.Wrap(err, "setting up email sender")
	}
	e.senders[SenderEmail] = sender

	catcher := grip.NewBasicCatcher()
	for key, s := range e.senders {
		name := key.String()
		catcher.Add(s.SetErrorHandler(func(err error, m message.Composer) {
			if err == nil {
				return
			}
			grip.Error(message.WrapError(err, message.Fields{
				"message": "notification sender failed",
				"sender":  name,
			}))
		}))
	}

	e.closers["senders"] = func(_ context.Context) error {
		closeCatcher := grip.NewBasicCatcher()
		for _, s := range e.senders {
			closeCatcher.Add(s.Close())
		}
		return closeCatcher.Resolve()
	}

	return catcher.Resolve()
}

func (e *envState) createLocalQueue(ctx context.Context) error {
	conf := e.settings.Amboy
	e.localQueue = queue.NewLocalLimitedSize(conf.PoolSizeLocal, conf.LocalStorage)
	if err := e.localQueue.SetRunner(pool.NewAbortablePool(conf.PoolSizeLocal, e.localQueue)); err != nil {
		return errors.Wrap(err, "configuring worker pool for local queue")
	}
	if err := e.localQueue.Start(ctx); err != nil {
		return errors.Wrap(err, "starting local queue")
	}

	const (
		queueWaitInterval = 10 * time.Millisecond
		queueWaitTimeout  = 10 * time.Second
	)

	e.closers["background-local-queue"] = func(ctx context.Context) error {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, queueWaitTimeout)
		defer cancel()
		if !amboy.WaitInterval(ctx, e.localQueue, queueWaitInterval) {
			grip.Critical(message.Fields{
				"message": "pending jobs failed to finish",
				"queue":   "local",
				"status":  e.localQueue.Stats(ctx),
			})
			return errors.New("failed to stop with running jobs")
		}
		e.localQueue.Close(ctx)
		return nil
	}

	return nil
}

func (e *envState) Settings() *Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.settings
}

func (e *envState) Client() *mongo.Client {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.client
}

func (e *envState) DB() *mongo.Database {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.client.Database(e.settings.Database.DB)
}

func (e *envState) Bucket() pail.Bucket {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.bucket
}

func (e *envState) LocalQueue() amboy.Queue {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.localQueue
}

func (e *envState) GetSender(key SenderKey) (send.Sender, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sender, ok := e.senders[key]
	if !ok {
		return nil, errors.Errorf("sender '%s' is not configured", key)
	}

	return sender, nil
}

func (e *envState) RegisterCloser(name string, closer func(context.Context) error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.closers[name]; ok {
		grip.Critical(message.Fields{
			"closer":  name,
			"message": "duplicate closer registered",
			"cause":   "programmer error",
		})
	}
	e.closers[name] = closer
}

func (e *envState) Close(ctx context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	deadline, _ := ctx.Deadline()
	catcher := grip.NewBasicCatcher()
	wg := &sync.WaitGroup{}
	for n, closer := range e.closers {
		if closer == nil {
			continue
		}

		wg.Add(1)
		go func(name string, close func(context.Context) error) {
			defer wg.Done()
			grip.Info(message.Fields{
				"message":  "calling closer",
				"closer":   name,
				"deadline": deadline,
			})
			catcher.Add(close(ctx))
		}(n, closer)
	}

	wg.Wait()
	return catcher.Resolve()
}
