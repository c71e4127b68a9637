package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/forPelevin/dmcut/internal/types"
)

type renderCall struct {
	start, end time.Duration
	out        string
	burnASS    string
}

type coverCall struct {
	at   time.Duration
	out  string
	text types.CoverText
}

type fakeVideoTool struct {
	renders []renderCall
	covers  []coverCall
	// failOut makes RenderClip fail for outputs containing the substring.
	failOut string
	// duration is what ProbeDuration reports; zero means an hour.
	duration    time.Duration
	lengthErr   error
	lengthCalls int
}

func (f *fakeVideoTool) RenderClip(_ context.Context, _ string, start, end time.Duration, out string, burnASS string) error {
	if f.failOut != "" && strings.Contains(out, f.failOut) {
		return errors.New("ffmpeg exploded")
	}
	f.renders = append(f.renders, renderCall{start: start, end: end, out: out, burnASS: burnASS})
	return nil
}

func (f *fakeVideoTool) ExtractCover(_ context.Context, _ string, at time.Duration, out string, text types.CoverText) error {
	f.covers = append(f.covers, coverCall{at: at, out: out, text: text})
	return nil
}

func (f *fakeVideoTool) ProbeDuration(context.Context, string) (time.Duration, error) {
	f.lengthCalls++
	if f.lengthErr != nil {
		return 0, f.lengthErr
	}
	if f.duration == 0 {
		return time.Hour, nil
	}
	return f.duration, nil
}

type fakeMeta struct {
	meta types.ClipMeta
	err  error
	reqs []types.MetadataRequest
}

func (f *fakeMeta) Generate(_ context.Context, req types.MetadataRequest) (types.ClipMeta, error) {
	f.reqs = append(f.reqs, req)
	return f.meta, f.err
}

type fakeRuns struct {
	runs []types.RunRecord
	err  error
}

func (f *fakeRuns) SaveRun(_ context.Context, run types.RunRecord) error {
	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, run)
	return nil
}
