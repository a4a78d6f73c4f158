package cron

import log "log/slog"

// InitCron 注册计数同步等定时任务并启动引擎
func InitCron(mgr *Manager) error {
	log.Info("注册定时任务...")
	if err := mgr.RegisterJobs(); err != nil {
		return err
	}
	mgr.Start()
	return nil
}
