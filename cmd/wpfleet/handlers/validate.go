package handlers

import "github.com/imamik/wpfleet/internal/ui/report"

// Validate loads the site list and reports every violation at once.
// Nothing outside the process is touched.
func Validate(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	return report.WriteConfig(stdout, cfg)
}
