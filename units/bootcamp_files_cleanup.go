package units

import (
	"context"
	"fmt"
	"time"

	devcamper "github.com/Md-IrfanS/DevCamper-API"
	"github.com/Md-IrfanS/DevCamper-API/upload"
	"github.com/evergreen-ci/pail"
	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/job"
	"github.com/mongodb/amboy/registry"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

const (
	bootcampFilesCleanupJobName = "bootcamp-files-cleanup"
	tsFormat                    = "2006-01-02.15-04-05"
)

func init() {
	registry.AddJobType(bootcampFilesCleanupJobName,
		func() amboy.Job { return makeBootcampFilesCleanupJob() })
}

type bootcampFilesCleanupJob struct {
	job.Base   `bson:"job_base" json:"job_base" yaml:"job_base"`
	BootcampID string   `bson:"bootcamp_id" json:"bootcamp_id" yaml:"bootcamp_id"`
	Keys       []string `bson:"keys" json:"keys" yaml:"keys"`

	bucket pail.Bucket
}

func makeBootcampFilesCleanupJob() *bootcampFilesCleanupJob {
	return &bootcampFilesCleanupJob{
		Base: job.Base{
			JobType: amboy.JobType{
				Name:    bootcampFilesCleanupJobName,
				Version: 0,
			},
		},
	}
}

// NewBootcampFilesCleanupJob removes the stored photo and documents of a
// deleted bootcamp from the upload bucket.
func NewBootcampFilesCleanupJob(bootcampID string, keys []string, ts time.Time) amboy.Job {
	j := makeBootcampFilesCleanupJob()
	j.BootcampID = bootcampID
	j.Keys = keys
	j.SetID(fmt.Sprintf("%s.%s.%s", bootcampFilesCleanupJobName, bootcampID, ts.Format(tsFormat)))
	return j
}

func (j *bootcampFilesCleanupJob) Run(ctx context.Context) {
	defer j.MarkComplete()

	if j.bucket == nil {
		env := devcamper.GetEnvironment()
		if env == nil {
			j.AddError(errors.New("environment is not configured"))
			return
		}
		j.bucket = env.Bucket()
	}

	removed := 0
	for _, key := range j.Keys {
		if ctx.Err() != nil {
			j.AddError(ctx.Err())
			return
		}
		exists, err := upload.Exists(ctx, j.bucket, key)
		if err != nil {
			j.AddError(err)
			continue
		}
		if !exists {
			continue
		}
		if err := j.bucket.Remove(ctx, key); err != nil {
			j.AddError(errors.Wrapf(err, "removing file '%s'", key))
			continue
		}
		removed++
	}

	grip.Info(message.Fields{
		"message":     "removed files of deleted bootcamp",
		"job_id":      j.ID(),
		"bootcamp_id": j.BootcampID,
		"keys":        len(j.Keys),
		"removed":     removed,
	})
}
