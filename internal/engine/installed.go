package engine

import (
	"os"

	"resourcehub/internal/config"
	"resourcehub/internal/model"
	"resourcehub/internal/security"
)

// installedSHA reports whether res is already present at its install
// path under cfg.UserBase with content matching its declared sha256. A
// resource with no declared sha256 is never reported as already
// installed, since there is nothing to verify against.
func installedSHA(cfg *config.EngineConfig, res *model.Resource) (string, error) {
	if res.Source.SHA256 == "" {
		return "", os.ErrNotExist
	}
	finalPath, err := security.ValidatePath(res.InstallPath, cfg.UserBase)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(finalPath)
	if err != nil {
		return "", err
	}
	if err := security.VerifySHA256(data, res.Source.SHA256); err != nil {
		return "", err
	}
	return res.Source.SHA256, nil
}
