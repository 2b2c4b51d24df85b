package storage

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// StorageServiceImpl stores assets in Cloudinary.
type StorageServiceImpl struct {
	cld    *cloudinary.Cloudinary
	logger *zap.Logger
}

// NewStorageService creates a new StorageServiceImpl instance.
func NewStorageService(cld *cloudinary.Cloudinary, logger *zap.Logger) StorageService {
	return &StorageServiceImpl{cld: cld, logger: logger}
}

// Upload sends source to Cloudinary into folder and returns the secure URL.
func (s *StorageServiceImpl) Upload(ctx context.Context, source, folder, resourceType string) (string, error) {
	if resourceType == "" {
		resourceType = ResourceAuto
	}
	params := uploader.UploadParams{
		Folder:       folder,
		ResourceType: resourceType,
	}
	result, err := s.cld.Upload.Upload(ctx, source, params)
	if err != nil {
		return "", fmt.Errorf("StorageServiceImpl: failed to upload file: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("StorageServiceImpl: upload rejected: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("StorageServiceImpl: no secure URL returned")
	}
	s.logger.Debug("asset uploaded", zap.String("folder", folder), zap.String("public_id", result.PublicID))
	return result.SecureURL, nil
}

// DeleteByPrefix removes image and raw assets under prefix.
func (s *StorageServiceImpl) DeleteByPrefix(ctx context.Context, prefix string) error {
	for _, rt := range []api.AssetType{api.Image, api.AssetType(ResourceRaw)} {
		res, err := s.cld.Admin.DeleteAssetsByPrefix(ctx, admin.DeleteAssetsByPrefixParams{
			AssetType: rt,
			Prefix:    api.CldAPIArray{prefix},
		})
		if err != nil {
			return fmt.Errorf("StorageServiceImpl: failed to delete %s assets under %s: %w", rt, prefix, err)
		}
		if res.Error.Message != "" {
			return fmt.Errorf("StorageServiceImpl: delete %s under %s rejected: %s", rt, prefix, res.Error.Message)
		}
	}
	return nil
}
