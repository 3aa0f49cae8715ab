package kaeltehilfe

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// overridesFile は手動対応表のファイル形式。
type overridesFile struct {
	ByUnterkunftID map[string]string `json:"by_unterkunft_id"`
}

// LoadOverrides は施設IDからKältehilfe URLへの手動対応表を読み込む。
// パスが空、またはファイルがない場合は空のマップを返す。
// 読み込みやパースに失敗した場合は警告を記録して空のマップを返す。
func LoadOverrides(path string, logger *slog.Logger) map[string]string {
	out := map[string]string{}
	if path == "" {
		return out
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("手動対応表の読み込みに失敗しました",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
		return out
	}

	var f overridesFile
	if err := json.Unmarshal(data, &f); err != nil {
		logger.Warn("手動対応表のパースに失敗しました",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return out
	}

	for id, u := range f.ByUnterkunftID {
		id = strings.TrimSpace(id)
		u = strings.TrimSpace(u)
		if id == "" || u == "" {
			continue
		}
		out[id] = u
	}
	return out
}
