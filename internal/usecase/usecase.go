package usecase

import (
	"log/slog"
	"time"

	"github.com/forPelevin/dmcut/internal/logging"
	"github.com/forPelevin/dmcut/internal/ports"
)

// Deps are the collaborators a Usecase drives. Runs may be nil when no
// history is kept.
type Deps struct {
	Video ports.VideoTool
	Meta  ports.MetadataGenerator
	Runs  ports.RunRecorder
	Log   *slog.Logger
	Now   func() time.Time
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = logging.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return Usecase{d: d}
}

func seconds(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
