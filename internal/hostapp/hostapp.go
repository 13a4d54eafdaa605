// Package hostapp holds the handlers served by the ipchost binary.
package hostapp

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/morezero/ipc-bridge/pkg/channel"
	"github.com/morezero/ipc-bridge/pkg/ipcmain"
	"github.com/morezero/ipc-bridge/pkg/notify"
	"github.com/morezero/ipc-bridge/pkg/transport"
)

const logPrefix = "hostapp:hostapp"

// Error codes returned to renderers.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidArgument = "INVALID_ARGUMENT"
)

// Settings is an in-memory key/value store.
type Settings struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewSettings creates a store seeded with initial.
func NewSettings(initial map[string]string) *Settings {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &Settings{values: values}
}

// Get returns the value stored under key.
func (s *Settings) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key.
func (s *Settings) Set(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

// Keys returns the stored keys, sorted.
func (s *Settings) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Params configures App.
type Params struct {
	Name       string
	Version    string
	Settings   *Settings
	Dispatcher *notify.Dispatcher
	Logger     *slog.Logger
}

// App serves application info and settings.
type App struct {
	infos    channel.AppInfos
	settings *Settings
	changed  notify.SendFunc[channel.Setting]
	logger   *slog.Logger
}

// New creates an App. A nil Settings starts empty; a nil Dispatcher drops
// SETTING_CHANGED notifications.
func New(params Params) *App {
	settings := params.Settings
	if settings == nil {
		settings = NewSettings(nil)
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	disp := params.Dispatcher
	if disp == nil {
		disp = notify.NewDispatcher(nil, &notify.DispatcherOpts{Logger: logger})
	}
	return &App{
		infos:    channel.AppInfos{Name: params.Name, Version: params.Version},
		settings: settings,
		changed:  notify.Bind(disp, channel.SettingChanged),
		logger:   logger,
	}
}

// Registrations returns the handlers App serves.
func (a *App) Registrations() []ipcmain.Registration {
	return []ipcmain.Registration{
		ipcmain.Handle(channel.GetAppInfos, a.appInfos),
		ipcmain.Handle(channel.GetSetting, a.getSetting),
		ipcmain.HandleDeferred(channel.SetSetting, a.setSetting),
	}
}

func (a *App) appInfos(_ *transport.Event, _ channel.NoArgs) (channel.AppInfos, error) {
	return a.infos, nil
}

func (a *App) getSetting(_ *transport.Event, args channel.SettingKey) (channel.Setting, error) {
	v, ok := a.settings.Get(args.Key)
	if !ok {
		return channel.Setting{}, &ipcmain.HandlerError{
			Code:    CodeNotFound,
			Message: fmt.Sprintf("setting %q is not set", args.Key),
		}
	}
	return channel.Setting{Key: args.Key, Value: v}, nil
}

// setSetting stores the value off the dispatch goroutine, then tells the
// requesting window about the change.
func (a *App) setSetting(ev *transport.Event, args channel.Setting) *ipcmain.Future[channel.Setting] {
	return ipcmain.Go(func() (channel.Setting, error) {
		if args.Key == "" {
			return channel.Setting{}, &ipcmain.HandlerError{Code: CodeInvalidArgument, Message: "setting key is empty"}
		}
		a.settings.Set(args.Key, args.Value)

		if ev != nil && ev.WindowID != "" {
			if err := a.changed(notify.WindowRef(ev.WindowID), args); err != nil {
				a.logger.Warn(fmt.Sprintf("%s - setting %s stored but change notification failed: %v", logPrefix, args.Key, err))
			}
		}
		return args, nil
	})
}
