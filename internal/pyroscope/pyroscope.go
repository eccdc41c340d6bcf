package pyroscope

import (
	"context"
	"strings"

	"github.com/beautyops/beautyops/internal/config"
	"github.com/beautyops/beautyops/internal/logger"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/fx"
)

type Service struct {
	cfg      *config.Configuration
	logger   *logger.Logger
	profiler *pyroscope.Profiler
}

// Module provides fx options for Pyroscope
func Module() fx.Option {
	return fx.Options(
		fx.Provide(NewPyroscopeService),
		fx.Invoke(RegisterHooks),
	)
}

// RegisterHooks starts continuous profiling when enabled
func RegisterHooks(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !svc.IsEnabled() {
				svc.logger.Info("Pyroscope profiling is disabled")
				return nil
			}
			return svc.start()
		},
		OnStop: func(ctx context.Context) error {
			if svc.profiler != nil {
				svc.logger.Info("stopping Pyroscope profiling")
				return svc.profiler.Stop()
			}
			return nil
		},
	})
}

// NewPyroscopeService creates a new Pyroscope service
func NewPyroscopeService(cfg *config.Configuration, logger *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Service) start() error {
	pc := s.cfg.Pyroscope
	profileTypes := s.profileTypes()

	pyroscopeConfig := pyroscope.Config{
		ApplicationName: pc.ApplicationName,
		ServerAddress:   pc.ServerAddress,
		ProfileTypes:    profileTypes,
		SampleRate:      pc.SampleRate,
		DisableGCRuns:   pc.DisableGCRuns,
		Logger:          s,
		Tags:            map[string]string{"mode": string(s.cfg.Deployment.Mode)},
	}
	if pc.BasicAuthUser != "" {
		pyroscopeConfig.BasicAuthUser = pc.BasicAuthUser
		pyroscopeConfig.BasicAuthPassword = pc.BasicAuthPass
	}

	profiler, err := pyroscope.Start(pyroscopeConfig)
	if err != nil {
		s.logger.Errorw("failed to initialize Pyroscope", "error", err)
		return err
	}
	s.profiler = profiler

	s.logger.Infow("Pyroscope profiling initialized",
		"application_name", pc.ApplicationName,
		"server_address", pc.ServerAddress,
		"has_basic_auth", pc.BasicAuthUser != "",
		"profile_types", profileTypes,
	)
	return nil
}

// Debugf, Infof and Errorf implement pyroscope.Logger.
// Profiler debug output is very chatty so it is dropped.
func (s *Service) Debugf(format string, args ...interface{}) {}

func (s *Service) Infof(format string, args ...interface{}) {
	s.logger.Infof("[pyroscope] "+format, args...)
}

func (s *Service) Errorf(format string, args ...interface{}) {
	s.logger.Errorf("[pyroscope] "+format, args...)
}

// IsEnabled returns whether Pyroscope profiling is enabled
func (s *Service) IsEnabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Pyroscope.Enabled
}

var profileTypesByName = map[string]pyroscope.ProfileType{
	"cpu":            pyroscope.ProfileCPU,
	"inuse_objects":  pyroscope.ProfileInuseObjects,
	"alloc_objects":  pyroscope.ProfileAllocObjects,
	"inuse_space":    pyroscope.ProfileInuseSpace,
	"alloc_space":    pyroscope.ProfileAllocSpace,
	"goroutines":     pyroscope.ProfileGoroutines,
	"mutex_count":    pyroscope.ProfileMutexCount,
	"mutex_duration": pyroscope.ProfileMutexDuration,
	"block_count":    pyroscope.ProfileBlockCount,
	"block_duration": pyroscope.ProfileBlockDuration,
}

func (s *Service) profileTypes() []pyroscope.ProfileType {
	if len(s.cfg.Pyroscope.ProfileTypes) == 0 {
		return []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileGoroutines,
		}
	}

	var result []pyroscope.ProfileType
	for _, name := range s.cfg.Pyroscope.ProfileTypes {
		pt, ok := profileTypesByName[strings.ToLower(name)]
		if !ok {
			s.logger.Warnw("unknown profile type", "type", name)
			continue
		}
		result = append(result, pt)
	}
	return result
}

// TagWrapper runs fn with profiling labels attached
func (s *Service) TagWrapper(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	if !s.IsEnabled() {
		fn(ctx)
		return
	}

	pairs := make([]string, 0, len(labels)*2)
	for key, value := range labels {
		pairs = append(pairs, key, value)
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}
