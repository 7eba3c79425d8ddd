// Package project resolves the identity of a Verse project from its manifest.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"vdx/internal/errors"
	"vdx/internal/paths"
)

// Source names the kind of manifest an identity came from.
type Source string

const (
	SourceVdxToml    Source = "vdx.toml"
	SourceUEFN       Source = "uefnproject"
	SourceUPlugin    Source = "uplugin"
	SourceConfigured Source = "configured"
)

// ManifestFile is the project manifest understood natively.
const ManifestFile = "vdx.toml"

// Identity is the (name, root) pair a persisted cache belongs to.
type Identity struct {
	Name         string `json:"name"`
	RootPath     string `json:"rootPath"`
	ManifestPath string `json:"manifestPath,omitempty"`
	Source       Source `json:"source"`
}

type vdxManifest struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
}

type uefnManifest struct {
	Title string `json:"title"`
	Name  string `json:"name"`
}

type pluginManifest struct {
	FriendlyName string `json:"FriendlyName"`
}

// detector tries one manifest shape. ok=false means "not present here".
type detector func(root string) (Identity, bool, error)

// ResolveIdentity detects the project at root. Manifests are consulted in
// priority order: vdx.toml, *.uefnproject, *.uplugin.
func ResolveIdentity(root string) (Identity, error) {
	canonical, err := paths.ResolveRoot(root)
	if err != nil {
		return Identity{}, errors.Wrap(errors.InvalidPath, "cannot resolve project root", err)
	}
	info, err := os.Stat(canonical)
	if err != nil || !info.IsDir() {
		return Identity{}, errors.New(errors.InvalidPath, "project root is not a directory").
			WithDetails(map[string]interface{}{"root": root})
	}

	for _, detect := range []detector{detectVdxToml, detectUEFN, detectUPlugin} {
		id, ok, err := detect(canonical)
		if err != nil {
			return Identity{}, err
		}
		if ok {
			id.RootPath = canonical
			return id, nil
		}
	}
	return Identity{}, errors.New(errors.IdentityUnresolved, "no project manifest found").
		WithDetails(map[string]interface{}{"root": canonical})
}

// WithName returns an identity for root with an explicitly configured name,
// bypassing manifest detection.
func WithName(root, name string) (Identity, error) {
	canonical, err := paths.ResolveRoot(root)
	if err != nil {
		return Identity{}, errors.Wrap(errors.InvalidPath, "cannot resolve project root", err)
	}
	if strings.TrimSpace(name) == "" {
		return Identity{}, errors.New(errors.IdentityUnresolved, "configured project name is empty")
	}
	return Identity{Name: strings.TrimSpace(name), RootPath: canonical, Source: SourceConfigured}, nil
}

func detectVdxToml(root string) (Identity, bool, error) {
	manifest := filepath.Join(root, ManifestFile)
	data, err := os.ReadFile(manifest)
	if os.IsNotExist(err) {
		return Identity{}, false, nil
	}
	if err != nil {
		return Identity{}, false, errors.Wrap(errors.IdentityUnresolved, "cannot read "+ManifestFile, err)
	}
	var m vdxManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Identity{}, false, errors.Wrap(errors.IdentityUnresolved, "invalid "+ManifestFile, err)
	}
	name := strings.TrimSpace(m.Project.Name)
	if name == "" {
		return Identity{}, false, errors.New(errors.IdentityUnresolved, ManifestFile+" has no [project] name")
	}
	return Identity{Name: name, ManifestPath: ManifestFile, Source: SourceVdxToml}, true, nil
}

func detectUEFN(root string) (Identity, bool, error) {
	manifest, ok := firstWithExt(root, ".uefnproject")
	if !ok {
		return Identity{}, false, nil
	}
	var m uefnManifest
	name := stem(manifest)
	if data, err := os.ReadFile(filepath.Join(root, manifest)); err == nil && json.Unmarshal(data, &m) == nil {
		switch {
		case strings.TrimSpace(m.Title) != "":
			name = strings.TrimSpace(m.Title)
		case strings.TrimSpace(m.Name) != "":
			name = strings.TrimSpace(m.Name)
		}
	}
	return Identity{Name: name, ManifestPath: manifest, Source: SourceUEFN}, true, nil
}

func detectUPlugin(root string) (Identity, bool, error) {
	manifest, ok := firstWithExt(root, ".uplugin")
	if !ok {
		return Identity{}, false, nil
	}
	var m pluginManifest
	name := stem(manifest)
	if data, err := os.ReadFile(filepath.Join(root, manifest)); err == nil && json.Unmarshal(data, &m) == nil {
		if strings.TrimSpace(m.FriendlyName) != "" {
			name = strings.TrimSpace(m.FriendlyName)
		}
	}
	return Identity{Name: name, ManifestPath: manifest, Source: SourceUPlugin}, true, nil
}

// firstWithExt returns the lexically first regular file in root with ext.
func firstWithExt(root, ext string) (string, bool) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", false
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ext) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return names[0], true
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
