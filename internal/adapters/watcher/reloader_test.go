package watcher_test

import (
	"context"
	"errors"
	"iter"
	"slices"
	"testing"
	"testing/fstest"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/qcache/internal/adapters/config"
	"go.trai.ch/qcache/internal/adapters/watcher"
	"go.trai.ch/qcache/internal/core/domain"
	"go.trai.ch/qcache/internal/core/ports"
	"go.trai.ch/qcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type resetRecorder struct {
	got []*domain.Settings
	err error
}

func (r *resetRecorder) Reset(s *domain.Settings) error {
	r.got = append(r.got, s)
	return r.err
}

type reloaderFixture struct {
	loader *mocks.MockSettingsLoader
	logger *mocks.MockLogger
	target *resetRecorder
	r      *watcher.Reloader
}

func newReloader(t *testing.T, w ports.Watcher) *reloaderFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &reloaderFixture{
		loader: mocks.NewMockSettingsLoader(ctrl),
		logger: mocks.NewMockLogger(ctrl),
		target: &resetRecorder{},
	}
	if w == nil {
		w = mocks.NewMockWatcher(ctrl)
	}
	f.r = watcher.NewReloader(w, f.loader, f.logger, f.target)
	return f
}

func TestReloader_Handle_LoadsChangedFile(t *testing.T) {
	f := newReloader(t, nil)
	settings := domain.DefaultSettings()
	settings.CacheSizeLimit = 3

	f.loader.EXPECT().LoadFile(settingsPath).Return(settings, nil)
	f.logger.EXPECT().Info("reloaded settings from " + settingsPath)

	f.r.Handle([]ports.WatchEvent{write(settingsPath)})

	require.Len(t, f.target.got, 1)
	assert.Same(t, settings, f.target.got[0])
}

func TestReloader_Handle_RemovedFileFallsBackToDefaults(t *testing.T) {
	for _, op := range []ports.WatchOp{ports.OpRemove, ports.OpRename} {
		f := newReloader(t, nil)
		defaults := domain.DefaultSettings()
		defaults.CacheSizeLimit = 7
		f.loader.EXPECT().Defaults().Return(defaults, nil)
		f.logger.EXPECT().Warn(gomock.Any())
		f.logger.EXPECT().Info(gomock.Any())

		f.r.Handle([]ports.WatchEvent{{Path: settingsPath, Operation: op}})

		require.Len(t, f.target.got, 1)
		assert.Same(t, defaults, f.target.got[0])
	}
}

func TestReloader_Handle_RemovedFileKeepsEnvironmentOverrides(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any())
	logger.EXPECT().Info(gomock.Any())

	env := map[string]string{
		config.EnvCacheSizeLimit: "7",
		config.EnvCachePolicy:    "bytesize",
	}
	loader := &config.Loader{
		Logger: logger,
		FS:     config.NewMapFSAdapter("/work", fstest.MapFS{}),
		Getenv: func(k string) string { return env[k] },
	}
	target := &resetRecorder{}
	r := watcher.NewReloader(mocks.NewMockWatcher(ctrl), loader, logger, target)

	r.Handle([]ports.WatchEvent{{Path: "/work/" + domain.SettingsFileName, Operation: ports.OpRemove}})

	require.Len(t, target.got, 1)
	assert.Equal(t, 7, target.got[0].CacheSizeLimit)
	assert.Equal(t, "bytesize", target.got[0].CachePolicy)
}

func TestReloader_Handle_RemovedFileWithInvalidOverrides(t *testing.T) {
	f := newReloader(t, nil)
	f.loader.EXPECT().Defaults().Return(nil, domain.ErrInvalidSetting)
	f.logger.EXPECT().Warn(gomock.Any())
	f.logger.EXPECT().Error(domain.ErrInvalidSetting)

	f.r.Handle([]ports.WatchEvent{{Path: settingsPath, Operation: ports.OpRemove}})

	assert.Empty(t, f.target.got)
}

func TestReloader_Handle_KeepsSettingsOnLoadError(t *testing.T) {
	f := newReloader(t, nil)
	f.loader.EXPECT().LoadFile(settingsPath).Return(nil, domain.ErrConfigParseFailed)
	f.logger.EXPECT().Error(domain.ErrConfigParseFailed)

	f.r.Handle([]ports.WatchEvent{write(settingsPath)})

	assert.Empty(t, f.target.got)
}

func TestReloader_Handle_ReportsResetError(t *testing.T) {
	f := newReloader(t, nil)
	f.target.err = domain.ErrInvalidPolicy
	f.loader.EXPECT().LoadFile(settingsPath).Return(domain.DefaultSettings(), nil)
	f.logger.EXPECT().Error(domain.ErrInvalidPolicy)

	f.r.Handle([]ports.WatchEvent{write(settingsPath)})
}

func TestReloader_Handle_Empty(t *testing.T) {
	f := newReloader(t, nil)
	f.r.Handle(nil)
	assert.Empty(t, f.target.got)
}

func TestReloader_Run(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		w := mocks.NewMockWatcher(ctrl)
		events := []ports.WatchEvent{
			{Path: settingsPath, Operation: ports.OpCreate},
			write(settingsPath),
		}
		w.EXPECT().Start(gomock.Any(), settingsPath).Return(nil)
		w.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](slices.Values(events)))

		f := newReloader(t, w)
		f.loader.EXPECT().LoadFile(settingsPath).Return(domain.DefaultSettings(), nil).Times(1)
		f.logger.EXPECT().Info(gomock.Any())

		require.NoError(t, f.r.Run(context.Background(), settingsPath))

		time.Sleep(2 * watcher.DefaultDebounceWindow)
		synctest.Wait()

		assert.Len(t, f.target.got, 1)
	})
}

func TestReloader_Run_AppliesPendingEventsBeforeReturning(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		w := mocks.NewMockWatcher(ctrl)
		w.EXPECT().Start(gomock.Any(), settingsPath).Return(nil)
		w.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](slices.Values([]ports.WatchEvent{write(settingsPath)})))

		f := newReloader(t, w)
		f.loader.EXPECT().LoadFile(settingsPath).Return(domain.DefaultSettings(), nil)
		f.logger.EXPECT().Info(gomock.Any())

		require.NoError(t, f.r.Run(context.Background(), settingsPath))
		require.Len(t, f.target.got, 1)

		// The debounce timer was stopped, so nothing is applied after Run returns.
		time.Sleep(2 * watcher.DefaultDebounceWindow)
		synctest.Wait()
		assert.Len(t, f.target.got, 1)
	})
}

func TestReloader_Run_StartError(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := mocks.NewMockWatcher(ctrl)
	startErr := errors.New("too many open files")
	w.EXPECT().Start(gomock.Any(), settingsPath).Return(startErr)

	f := newReloader(t, w)
	require.ErrorIs(t, f.r.Run(context.Background(), settingsPath), startErr)
}
