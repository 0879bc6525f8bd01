// storage.go
//
// A recipe sharing backend: recipes, favorites, shopping lists and subscriptions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of foodgram.
// foodgram is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// foodgram is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with foodgram.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package storage keeps uploaded images in a blob store.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/localnerve/foodgram/internal/config"
	"github.com/localnerve/foodgram/internal/models"
)

// Storage saves and removes image blobs and resolves their public URL.
type Storage interface {
	Save(ctx context.Context, prefix string, blob Blob) (models.ImageRef, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Blob is a decoded upload.
type Blob struct {
	Data        []byte
	ContentType string
}

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ErrInvalidImage is returned for data URIs that are malformed or not an accepted image type.
var ErrInvalidImage = errors.New("invalid image data URI")

// DecodeDataURI decodes "data:image/<type>;base64,<payload>".
func DecodeDataURI(uri string) (Blob, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return Blob{}, fmt.Errorf("%w: missing data: prefix", ErrInvalidImage)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Blob{}, fmt.Errorf("%w: missing payload", ErrInvalidImage)
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Blob{}, fmt.Errorf("%w: payload must be base64", ErrInvalidImage)
	}
	if _, known := extensions[contentType]; !known {
		return Blob{}, fmt.Errorf("%w: unsupported type %q", ErrInvalidImage, contentType)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Blob{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return Blob{}, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	return Blob{Data: data, ContentType: contentType}, nil
}

// NewKey builds a unique object key under prefix.
func NewKey(prefix, contentType string) string {
	return path.Join(prefix, uuid.NewString()+"."+extensions[contentType])
}

// New builds the storage backend named by MEDIA_BACKEND.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.MediaBackend {
	case "local":
		baseURL := cfg.MediaURL
		if strings.HasPrefix(baseURL, "/") {
			baseURL = cfg.SiteURL + baseURL
		}
		return NewLocal(cfg.MediaRoot, baseURL)
	case "s3":
		return NewS3(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	}
	return nil, fmt.Errorf("unsupported media backend: %s", cfg.MediaBackend)
}
