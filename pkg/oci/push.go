// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package oci

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	ocistore "oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	"github.com/macdiff/macdiff/pkg/errors"
)

// ArtifactType is the media type of archived snapshot directories.
const ArtifactType = "application/vnd.macdiff.snapshots.v1"

// LayoutDir is the directory below OutputDir that holds the OCI image layout.
const LayoutDir = "oci-layout"

// PackageOptions configures local packaging.
type PackageOptions struct {
	// SourceDir is the directory to archive.
	SourceDir string
	// SubDir limits the archive to a subdirectory of SourceDir, keeping its
	// relative path inside the layer.
	SubDir string
	// OutputDir receives the OCI image layout.
	OutputDir string
	// Registry and Repository are only used to build PackageResult.Reference.
	Registry   string
	Repository string
	// Tag is required.
	Tag string
	// Annotations are added to the manifest.
	Annotations map[string]string
	// ReproducibleTimestamp fixes the created annotation.
	ReproducibleTimestamp string
}

// PackageResult describes a packaged artifact.
type PackageResult struct {
	Digest    string
	Reference string
	StorePath string
}

// PushOptions configures pushing a packaged artifact to a registry.
type PushOptions struct {
	Registry    string
	Repository  string
	Tag         string
	PlainHTTP   bool
	InsecureTLS bool
}

// PushResult describes a pushed artifact.
type PushResult struct {
	Digest    string
	Reference string
}

// Package archives a directory as a single gzip layer and stores the
// resulting manifest, tagged, in an OCI image layout under OutputDir.
func Package(ctx context.Context, opts PackageOptions) (*PackageResult, error) {
	if opts.Tag == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "tag is required for OCI packaging")
	}
	if opts.SourceDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "source directory is required")
	}
	if opts.OutputDir == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "output directory is required")
	}
	if _, err := os.Stat(filepath.Join(opts.SourceDir, opts.SubDir)); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeNotFound, "source directory not found", err,
			map[string]any{"path": filepath.Join(opts.SourceDir, opts.SubDir)})
	}

	pushFromDir, cleanup, err := preparePushDir(opts.SourceDir, opts.SubDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to prepare source directory", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	absDir, err := filepath.Abs(pushFromDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to resolve source directory", err)
	}

	fs, err := file.New(absDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create file store", err)
	}
	defer func() { _ = fs.Close() }()
	fs.TarReproducible = true

	layer, err := fs.Add(ctx, ".", ociv1.MediaTypeImageLayerGzip, absDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to add source directory to store", err)
	}

	annotations := make(map[string]string, len(opts.Annotations)+1)
	for k, v := range opts.Annotations {
		annotations[k] = v
	}
	if opts.ReproducibleTimestamp != "" {
		annotations[ociv1.AnnotationCreated] = opts.ReproducibleTimestamp
	}

	manifest, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType,
		oras.PackManifestOptions{
			Layers:              []ociv1.Descriptor{layer},
			ManifestAnnotations: annotations,
		})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to pack manifest", err)
	}
	if err := fs.Tag(ctx, manifest, opts.Tag); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to tag manifest", err)
	}

	storePath, err := filepath.Abs(filepath.Join(opts.OutputDir, LayoutDir))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to resolve output directory", err)
	}
	layout, err := ocistore.New(storePath)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to open OCI layout", err,
			map[string]any{"path": storePath})
	}

	desc, err := oras.Copy(ctx, fs, opts.Tag, layout, opts.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to write OCI layout", err)
	}

	ref := opts.Tag
	if opts.Registry != "" && opts.Repository != "" {
		ref = fmt.Sprintf("%s/%s:%s", stripProtocol(opts.Registry), opts.Repository, opts.Tag)
	}

	return &PackageResult{
		Digest:    desc.Digest.String(),
		Reference: ref,
		StorePath: storePath,
	}, nil
}

// PushFromStore copies the manifest tagged opts.Tag from the OCI layout at
// storePath to the remote repository.
func PushFromStore(ctx context.Context, storePath string, opts PushOptions) (*PushResult, error) {
	if opts.Tag == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "tag is required to push OCI artifact")
	}
	if err := ValidateRegistryReference(opts.Registry, opts.Repository); err != nil {
		return nil, err
	}

	layout, err := ocistore.New(storePath)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal, "failed to open OCI layout", err,
			map[string]any{"path": storePath})
	}

	registryHost := stripProtocol(opts.Registry)
	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", registryHost, opts.Repository))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to initialize remote repository", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = createAuthClient(opts.PlainHTTP, opts.InsecureTLS)

	desc, err := oras.Copy(ctx, layout, opts.Tag, repo, opts.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, "failed to push artifact to registry", err)
	}

	return &PushResult{
		Digest:    desc.Digest.String(),
		Reference: fmt.Sprintf("%s/%s:%s", registryHost, opts.Repository, opts.Tag),
	}, nil
}

// ArchiveConfig configures Archive.
type ArchiveConfig struct {
	// OutputDir is the macdiff output directory; its Snapshots subdirectory
	// is archived.
	OutputDir string
	// SubDir is the subdirectory to archive.
	SubDir string
	// Target is where the artifact goes.
	Target *Reference
	// Version populates org.opencontainers.image.version.
	Version     string
	PlainHTTP   bool
	InsecureTLS bool
}

// ArchiveResult describes an archived snapshot directory.
type ArchiveResult struct {
	Digest    string
	Reference string
	StorePath string
	Pushed    bool
}

// Archive packages the snapshot directory. For registry targets the
// artifact is then pushed; for local targets the layout is written below
// Target.LocalPath and nothing leaves the host.
func Archive(ctx context.Context, cfg ArchiveConfig) (*ArchiveResult, error) {
	if cfg.Target == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "archive target is required")
	}
	tag := cfg.Target.Tag
	if tag == "" {
		tag = "latest"
	}

	layoutDir := cfg.OutputDir
	if !cfg.Target.IsOCI {
		layoutDir = cfg.Target.LocalPath
	}

	pkg, err := Package(ctx, PackageOptions{
		SourceDir:  cfg.OutputDir,
		SubDir:     cfg.SubDir,
		OutputDir:  layoutDir,
		Registry:   cfg.Target.Registry,
		Repository: cfg.Target.Repository,
		Tag:        tag,
		Annotations: map[string]string{
			ociv1.AnnotationTitle:   "macdiff snapshots",
			ociv1.AnnotationVersion: cfg.Version,
		},
	})
	if err != nil {
		return nil, err
	}
	slog.Info("snapshot archive packaged",
		"reference", pkg.Reference,
		"digest", pkg.Digest,
		"store", pkg.StorePath)

	if !cfg.Target.IsOCI {
		return &ArchiveResult{Digest: pkg.Digest, Reference: pkg.Reference, StorePath: pkg.StorePath}, nil
	}

	pushed, err := PushFromStore(ctx, pkg.StorePath, PushOptions{
		Registry:    cfg.Target.Registry,
		Repository:  cfg.Target.Repository,
		Tag:         tag,
		PlainHTTP:   cfg.PlainHTTP,
		InsecureTLS: cfg.InsecureTLS,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("snapshot archive pushed",
		"reference", pushed.Reference,
		"digest", pushed.Digest)

	return &ArchiveResult{
		Digest:    pushed.Digest,
		Reference: pushed.Reference,
		StorePath: pkg.StorePath,
		Pushed:    true,
	}, nil
}

// preparePushDir returns the directory to archive. With a subDir, a temp
// directory mirrors subDir through hard links so the layer keeps the
// relative path.
func preparePushDir(sourceDir, subDir string) (string, func(), error) {
	if subDir == "" {
		return sourceDir, nil, nil
	}

	tempDir, err := os.MkdirTemp("", "macdiff-archive-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	if err := hardLinkDir(filepath.Join(sourceDir, subDir), filepath.Join(tempDir, subDir)); err != nil {
		os.RemoveAll(tempDir)
		return "", nil, fmt.Errorf("failed to create hard links: %w", err)
	}

	return tempDir, func() { os.RemoveAll(tempDir) }, nil
}

func stripProtocol(registry string) string {
	registry = strings.TrimPrefix(registry, "https://")
	return strings.TrimPrefix(registry, "http://")
}

// createAuthClient returns a registry client that reads Docker credentials
// and optionally skips TLS verification.
func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
	if err != nil {
		slog.Debug("docker credentials unavailable", "error", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
	}

	client := &auth.Client{
		Client: &http.Client{Transport: transport},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		client.Credential = credentials.Credential(credStore)
	}
	return client
}

func hardLinkDir(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source directory: %w", err)
	}
	if err := os.MkdirAll(dst, info.Mode()); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read source directory: %w", err)
	}
	for _, entry := range entries {
		s, d := filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := hardLinkDir(s, d); err != nil {
				return err
			}
			continue
		}
		if err := os.Link(s, d); err != nil {
			return fmt.Errorf("failed to create hard link: %w", err)
		}
	}
	return nil
}
