package devices

import (
	"context"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/evolution-x/site-metadata/internal/console"
	"github.com/evolution-x/site-metadata/internal/logger"
)

// defaultImageExt is assumed when the image host URL has no extension.
const defaultImageExt = ".png"

// fetchImages makes sure every device has an image, never replacing one.
func (r *runner) fetchImages(ctx context.Context, devices []string) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.cfg.Concurrency)

	for _, device := range devices {
		eg.Go(func() error {
			deviceCtx := logger.WithKV(egCtx, "device", device)

			if err := r.fetchImage(deviceCtx, device); err != nil {
				r.report.Skip(deviceCtx, "image "+device, err)
			}

			return nil
		})
	}

	_ = eg.Wait()
}

// fetchImage handles one device. Only transport and storage failures are errors;
// an image missing on the host becomes a request for a human.
func (r *runner) fetchImage(ctx context.Context, device string) error {
	remoteURL := r.cfg.ImageURL(device)
	remoteExt := imageExt(remoteURL)

	for _, ext := range r.localExts(remoteExt) {
		exists, err := r.store.HasContent(r.cfg.ImagesDir, device+ext)
		if err != nil {
			return err
		}

		if exists {
			logger.DebugKV(ctx, "Image already exists, skipping", "file", device+ext)

			return nil
		}
	}

	logger.Info(ctx, "Fetching image for device")

	found, err := r.remote.ProbeImage(ctx, remoteURL)
	if err != nil {
		return err
	}

	if !found {
		console.Actionf(r.out,
			"Image for %s does not exist on the image host. Source one manually and convert it to %s (quality %d) as %s.",
			device, strings.ToUpper(r.cfg.ImageFormat), r.cfg.ImageQuality,
			filepath.Join(r.cfg.ImagesDir, device+"."+r.cfg.ImageFormat))

		return nil
	}

	data, err := r.remote.DownloadImage(ctx, remoteURL)
	if err != nil {
		return err
	}

	created, err := r.store.PutAsset(filepath.Join(r.cfg.ImagesDir, device+remoteExt), data)
	if err != nil {
		return err
	}

	if created && remoteExt != "."+r.cfg.ImageFormat {
		console.Actionf(r.out, "Fetched %s. Convert it to %s (quality %d).",
			filepath.Join(r.cfg.ImagesDir, device+remoteExt), strings.ToUpper(r.cfg.ImageFormat), r.cfg.ImageQuality)
	}

	return nil
}

// localExts lists the extensions whose presence means the device has an image.
func (r *runner) localExts(remoteExt string) []string {
	published := "." + r.cfg.ImageFormat
	if remoteExt == published {
		return []string{published}
	}

	return []string{published, remoteExt}
}

// imageExt returns the lower-cased extension of the URL path.
func imageExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultImageExt
	}

	if ext := strings.ToLower(path.Ext(u.Path)); ext != "" {
		return ext
	}

	return defaultImageExt
}
