package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"orbot/internal/logger"
)

// Watch re-loads the config file whenever it changes on disk and hands the
// fresh config to onChange. Reload failures keep the previous config and are
// logged; they never take the service down.
func Watch(path string, onChange func(*Config)) {
	if onChange == nil {
		return
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		logger.Warnf("config: watch disabled, cannot read %s: %v", path, err)
		return
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		cfg, err := Load(path)
		if err != nil {
			logger.Errorf("config: reload failed, keeping previous: %v", err)
			return
		}
		logger.Infof("config: reloaded after %s", evt.Op)
		onChange(cfg)
	})
	v.WatchConfig()
}
