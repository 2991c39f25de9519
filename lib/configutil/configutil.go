package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func splitExtension(name string) (stem, ext string) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[0:i], name[i+1:]
		}
	}
	return name, ""
}

// ReadConfig reads a json5 config file plus an optional sibling
// override: for "config.json5" a "config.local.json5" next to it is
// merged on top, field by field. The local file carries per-machine
// values that stay out of version control. When neither file exists
// the error satisfies os.IsNotExist.
func ReadConfig[T any](name string) (T, error) {
	var out T
	missing := true

	dirname := filepath.Dir(name)
	stem, ext := splitExtension(filepath.Base(name))

	base, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(base) > 0 {
		err = json5.Unmarshal(base, &out)
		if err != nil {
			return out, err
		}
		missing = false
	}

	localPath := filepath.Join(dirname, fmt.Sprintf("%s.local.%s", stem, ext))
	local, err := os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(local) > 0 {
		var override T
		err = json5.Unmarshal(local, &override)
		if err != nil {
			return out, err
		}
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localPath)
		missing = false
	}

	if missing {
		return out, os.ErrNotExist
	}

	return out, nil
}

// ReadRecursively walks from the working directory toward the
// filesystem root and reads the first matching config file it finds,
// so a binary can run from any subdirectory of a checkout.
func ReadRecursively[T any](name string) (T, error) {
	var none T

	root, err := filepath.Abs("/")
	if err != nil {
		return none, err
	}
	current, err := os.Getwd()
	if err != nil {
		return none, err
	}

	for current != root {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if os.IsNotExist(err) {
			current = filepath.Join(current, "..")
			continue
		}
		if err != nil {
			return none, err
		}

		return config, nil
	}

	return none, os.ErrNotExist
}
