package operations

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/db"
	"github.com/Md-IrfanS/DevCamper-API/model"
	"github.com/Md-IrfanS/DevCamper-API/model/bootcamp"
	"github.com/Md-IrfanS/DevCamper-API/model/course"
	"github.com/Md-IrfanS/DevCamper-API/model/review"
	"github.com/Md-IrfanS/DevCamper-API/model/user"
	"github.com/Md-IrfanS/DevCamper-API/thirdparty"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	usersFixture     = "users.json"
	bootcampsFixture = "bootcamps.json"
	coursesFixture   = "courses.json"
	reviewsFixture   = "reviews.json"
)

func Seed() cli.Command {
	return cli.Command{
		Name:  "seed",
		Usage: "load or clear fixture data",
		Subcommands: []cli.Command{
			seedImport(),
			seedDestroy(),
		},
	}
}

func seedImport() cli.Command {
	return cli.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "insert the JSON fixtures in a directory",
		Flags:   serviceConfigFlags(seedDataFlag()...),
		Before: mergeBeforeFuncs(
			setPlainLogger,
			requireFileExists(confFlagName),
			requireFileExists(envFileFlagName),
			requireStringFlag(dataFlagName),
			requireFileExists(dataFlagName),
		),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			fixtures, err := readFixtures(c.String(dataFlagName))
			if err != nil {
				return errors.WithStack(err)
			}

			env, err := startEnvironment(ctx, c)
			if err != nil {
				return errors.WithStack(err)
			}
			defer closeEnvironment(env)

			if err = ensureIndexes(ctx); err != nil {
				return errors.Wrap(err, "creating indexes")
			}

			settings := env.Settings()
			geocoder := thirdparty.NewMapQuestGeocoder(settings.Geocoder)
			defer geocoder.Close()

			if err = importFixtures(ctx, geocoder, settings.Auth.BcryptCost, fixtures); err != nil {
				return errors.Wrap(err, "importing fixtures")
			}

			grip.Info(message.Fields{
				"message":   "data imported",
				"users":     len(fixtures.Users),
				"bootcamps": len(fixtures.Bootcamps),
				"courses":   len(fixtures.Courses),
				"reviews":   len(fixtures.Reviews),
			})
			return nil
		},
	}
}

func seedDestroy() cli.Command {
	return cli.Command{
		Name:    "destroy",
		Aliases: []string{"d"},
		Usage:   "remove all users, bootcamps, courses and reviews",
		Flags:   serviceConfigFlags(),
		Before: mergeBeforeFuncs(
			setPlainLogger,
			requireFileExists(confFlagName),
			requireFileExists(envFileFlagName),
		),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			env, err := startEnvironment(ctx, c)
			if err != nil {
				return errors.WithStack(err)
			}
			defer closeEnvironment(env)

			if err = destroyFixtures(ctx); err != nil {
				return errors.WithStack(err)
			}
			grip.Info("data destroyed")
			return nil
		},
	}
}

// seedUser carries the plain text password that the stored user never
// exposes.
type seedUser struct {
	Id       primitive.ObjectID `json:"_id"`
	Name     string             `json:"name"`
	Email    string             `json:"email"`
	Role     devcamper.Role     `json:"role"`
	Password string             `json:"password"`
}

type fixtures struct {
	Users     []seedUser
	Bootcamps []bootcamp.Bootcamp
	Courses   []course.Course
	Reviews   []review.Review
}

// readFixtures decodes the fixture files in dir. A missing file contributes
// no documents.
func readFixtures(dir string) (*fixtures, error) {
	out := &fixtures{}
	catcher := grip.NewBasicCatcher()
	catcher.Add(readFixture(filepath.Join(dir, usersFixture), &out.Users))
	catcher.Add(readFixture(filepath.Join(dir, bootcampsFixture), &out.Bootcamps))
	catcher.Add(readFixture(filepath.Join(dir, coursesFixture), &out.Courses))
	catcher.Add(readFixture(filepath.Join(dir, reviewsFixture), &out.Reviews))
	if catcher.HasErrors() {
		return nil, catcher.Resolve()
	}
	return out, nil
}

func readFixture(path string, out any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		grip.Debug(message.Fields{
			"message": "fixture file not found, skipping",
			"path":    path,
		})
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading fixture '%s'", path)
	}
	return errors.Wrapf(json.Unmarshal(data, out), "decoding fixture '%s'", path)
}

// importFixtures inserts users before the bootcamps they own, and the
// bootcamps before their courses and reviews. Averages are recomputed once
// every course and review is stored.
func importFixtures(ctx context.Context, g thirdparty.Geocoder, bcryptCost int, f *fixtures) error {
	for _, su := range f.Users {
		role, err := devcamper.ParseRole(string(su.Role))
		if err != nil {
			return errors.Wrapf(err, "user '%s'", su.Email)
		}
		u := &user.DBUser{Id: su.Id, Name: su.Name, Email: su.Email, Role: role}
		if err = u.SetPassword(su.Password, bcryptCost); err != nil {
			return errors.Wrapf(err, "user '%s'", su.Email)
		}
		if err = user.Insert(ctx, u); err != nil {
			return errors.WithStack(err)
		}
	}

	seeded := map[primitive.ObjectID]bool{}
	for i := range f.Bootcamps {
		b := &f.Bootcamps[i]
		if err := model.GeocodeBootcamp(ctx, g, b); err != nil {
			return errors.WithStack(err)
		}
		if err := bootcamp.Insert(ctx, b); err != nil {
			return errors.WithStack(err)
		}
		seeded[b.Id] = true
	}

	for i := range f.Courses {
		if err := course.Insert(ctx, &f.Courses[i]); err != nil {
			return errors.WithStack(err)
		}
		seeded[f.Courses[i].Bootcamp] = true
	}
	for i := range f.Reviews {
		if err := review.Insert(ctx, &f.Reviews[i]); err != nil {
			return errors.WithStack(err)
		}
		seeded[f.Reviews[i].Bootcamp] = true
	}

	catcher := grip.NewBasicCatcher()
	for id := range seeded {
		catcher.Add(model.UpdateAverageCost(ctx, id))
		catcher.Add(model.UpdateAverageRating(ctx, id))
	}
	return catcher.Resolve()
}

func destroyFixtures(ctx context.Context) error {
	return errors.Wrap(db.ClearCollections(ctx,
		review.Collection,
		course.Collection,
		bootcamp.Collection,
		user.Collection,
	), "clearing collections")
}
