package azure

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/url"
	"strings"

	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/LambdaTest/forkplan/config"
	"github.com/LambdaTest/forkplan/pkg/constants"
	"github.com/LambdaTest/forkplan/pkg/core"
	errs "github.com/LambdaTest/forkplan/pkg/errors"

	"github.com/LambdaTest/forkplan/pkg/lumber"
)

// store represents the azure storage holding per branch timing archives
type store struct {
	logger    lumber.Logger
	container azblob.ContainerURL
}

const maxRetryRequests = 5

// NewAzureBlobEnv returns a new Azure blob timing archive.
func NewAzureBlobEnv(cfg *config.Config, logger lumber.Logger) (core.TimingArchive, error) {
	if cfg.Azure.StorageAccountName == "" ||
		cfg.Azure.StorageAccessKey == "" ||
		cfg.Azure.TimingsContainerName == "" {
		return nil, errs.ErrAzureConfig
	}
	// Create a default request pipeline using your storage account name and account key.
	credential, err := azblob.NewSharedKeyCredential(cfg.Azure.StorageAccountName, cfg.Azure.StorageAccessKey)
	if err != nil {
		logger.Errorf("Invalid azure credentials, error: %v", err)
		return nil, err
	}
	u, _ := url.Parse(fmt.Sprintf("https://%s.blob.core.windows.net", cfg.Azure.StorageAccountName))
	pipe := azblob.NewPipeline(credential, azblob.PipelineOptions{})
	service := azblob.NewServiceURL(*u, pipe)

	return &store{
		container: service.NewContainerURL(cfg.Azure.TimingsContainerName),
		logger:    logger,
	}, nil
}

// Download returns the zipped timing history of tag, errs.ErrNotFound if none was stored.
func (s *store) Download(ctx context.Context, tag string) ([]byte, error) {
	blobURL := s.container.NewBlockBlobURL(BlobPath(tag))
	s.logger.Debugf("downloading timing archive %s", blobURL.String())

	out, err := blobURL.Download(ctx, 0, azblob.CountToEnd, azblob.BlobAccessConditions{}, false, azblob.ClientProvidedKeyOptions{})
	if err != nil {
		return nil, errs.AzureError(err)
	}
	body := out.Body(azblob.RetryReaderOptions{MaxRetryRequests: maxRetryRequests})
	defer body.Close()
	return ioutil.ReadAll(body)
}

// BlobPath returns the blob holding the timing archive of tag.
func BlobPath(tag string) string {
	return strings.Trim(tag, "/") + "/" + constants.TimingsArtifactName + constants.TimingsArchiveExt
}
