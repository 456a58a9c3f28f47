package operations

import (
	"context"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/model/bootcamp"
	"github.com/Md-IrfanS/DevCamper-API/model/course"
	"github.com/Md-IrfanS/DevCamper-API/model/review"
	"github.com/Md-IrfanS/DevCamper-API/model/user"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

const closeTimeout = 30 * time.Second

// loadSettings reads the dotenv file and the settings file named by the
// command's flags, then applies environment overrides.
func loadSettings(c *cli.Context) (*devcamper.Settings, error) {
	if err := devcamper.LoadEnvFile(c.String(envFileFlagName)); err != nil {
		return nil, errors.WithStack(err)
	}

	settings, err := devcamper.NewSettings(c.String(confFlagName))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err = settings.ApplyEnvironment(); err != nil {
		return nil, errors.Wrap(err, "applying environment overrides")
	}

	return settings, nil
}

// startEnvironment builds the process-wide environment from the command's
// flags and installs it as the global environment.
func startEnvironment(ctx context.Context, c *cli.Context) (devcamper.Environment, error) {
	settings, err := loadSettings(c)
	if err != nil {
		return nil, err
	}

	env, err := devcamper.NewEnvironment(ctx, settings)
	if err != nil {
		return nil, errors.Wrap(err, "configuring application environment")
	}
	devcamper.SetEnvironment(env)

	return env, nil
}

func closeEnvironment(env devcamper.Environment) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	grip.Warning(errors.Wrap(env.Close(ctx), "closing environment"))
}

func ensureIndexes(ctx context.Context) error {
	catcher := grip.NewBasicCatcher()
	catcher.Wrap(user.EnsureIndexes(ctx), "users")
	catcher.Wrap(bootcamp.EnsureIndexes(ctx), "bootcamps")
	catcher.Wrap(course.EnsureIndexes(ctx), "courses")
	catcher.Wrap(review.EnsureIndexes(ctx), "reviews")
	return catcher.Resolve()
}
