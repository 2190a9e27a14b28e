package timingstore

import (
	"context"
	"errors"

	"github.com/LambdaTest/forkplan/pkg/core"
	errs "github.com/LambdaTest/forkplan/pkg/errors"
	"github.com/LambdaTest/forkplan/pkg/lumber"
)

type archiveStore struct {
	archive core.TimingArchive
	tag     string
	logger  lumber.Logger
}

// NewArchive returns a TimingStore reading the zipped history stored under tag.
// A tag without history yields no timings.
func NewArchive(archive core.TimingArchive, tag string, logger lumber.Logger) core.TimingStore {
	return &archiveStore{archive: archive, tag: tag, logger: logger}
}

func (a *archiveStore) Timings(ctx context.Context) ([]core.TestTiming, error) {
	data, err := a.archive.Download(ctx, a.tag)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			a.logger.Debugf("no timing history stored for tag %s", a.tag)
			return nil, nil
		}
		a.logger.Errorf("failed to download timing history for tag %s, error: %v", a.tag, err)
		return nil, err
	}
	timings, err := ReadArchive(data)
	if err != nil {
		return nil, err
	}
	a.logger.Debugf("loaded %d test timings for tag %s", len(timings), a.tag)
	return timings, nil
}
