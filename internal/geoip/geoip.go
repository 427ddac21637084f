// Package geoip resolves client IPs to ISO country codes with a GeoLite2 City database.
package geoip

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"

	"github.com/seuros/jogo/internal/logging"
)

// Unknown is reported when no country can be determined.
const Unknown = "Unknown"

// DatabaseFile is the file name looked up inside the data directory.
const DatabaseFile = "GeoLite2-City.mmdb"

// downloadURL is the jsDelivr mirror of the geolite2-city npm package.
var downloadURL = "https://cdn.jsdelivr.net/npm/geolite2-city/GeoLite2-City.mmdb.gz"

// Resolver looks up countries. A nil *Resolver, or one without a database,
// answers Unknown for every address.
type Resolver struct {
	reader *geoip2.Reader
	path   string
}

// Path returns the database location inside dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, DatabaseFile)
}

// Open loads the database from dataDir, downloading it first when download is
// set and the file is missing. Failures are logged and yield a resolver that
// answers Unknown; tracking never depends on geolocation.
func Open(ctx context.Context, dataDir string, download bool) *Resolver {
	log := logging.L()
	r := &Resolver{path: Path(dataDir)}

	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		if !download {
			log.Warn("GeoIP database not found; country breakdowns will report Unknown",
				zap.String("path", r.path))
			return r
		}
		log.Info("GeoIP database not found, attempting download", zap.String("path", r.path))
		if err := downloadDatabase(ctx, r.path); err != nil {
			log.Warn("GeoIP database download failed; country breakdowns will report Unknown",
				zap.Error(err), zap.String("path", r.path))
			return r
		}
		log.Info("GeoIP database downloaded")
	}

	reader, err := geoip2.Open(r.path)
	if err != nil {
		log.Warn("could not load GeoIP database", zap.Error(err), zap.String("path", r.path))
		return r
	}
	r.reader = reader
	log.Info("GeoIP database loaded", zap.String("path", r.path))
	return r
}

// Loaded reports whether lookups are backed by a database.
func (r *Resolver) Loaded() bool {
	return r != nil && r.reader != nil
}

// Country returns the ISO country code for ip, or Unknown.
func (r *Resolver) Country(ip string) string {
	if !r.Loaded() {
		return Unknown
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Unknown
	}

	record, err := r.reader.Country(parsed)
	if err != nil {
		logging.L().Debug("GeoIP lookup failed", zap.String("ip", ip), zap.Error(err))
		return Unknown
	}
	if record.Country.IsoCode == "" {
		return Unknown
	}
	return record.Country.IsoCode
}

// Close releases the database.
func (r *Resolver) Close() error {
	if !r.Loaded() {
		return nil
	}
	return r.reader.Close()
}

func downloadDatabase(ctx context.Context, dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	gzReader, err := gzip.NewReader(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() { _ = gzReader.Close() }()

	tmp := dbPath + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, gzReader); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write database: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dbPath)
}
