package director

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/reelcut/internal/system"
)

// GeneratePlanPath creates a timestamped plan filename under dir
func GeneratePlanPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("plan_%s.yaml", timestamp))
}

// FindLatestPlan finds the most recent plan file in dir
func FindLatestPlan(dir string) (string, error) {
	path, err := system.FindLatestFile(dir, []string{".yaml", ".yml"})
	if err != nil {
		return "", fmt.Errorf("no plan found: %w", err)
	}
	return path, nil
}
