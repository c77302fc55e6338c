package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/qaboard/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     HTTP bind address (e.g., ":5000")
//	-url string   public base URL for emailed links (e.g., "https://qa.example.com")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t duration   session token validity (e.g., "720h")
//	-k duration   cookie validity
//	-m string     environment: development|production
//	-l int        max profile picture size, bytes
//	-f string     local upload directory
//	-o string     storage backend: local|s3
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket name
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-log string   log format: json|console
//
// os.Args is filtered with flagx.FilterArgs first, so flags that belong to
// other components do not make parsing fail.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-url", "-d", "-s", "-t", "-k", "-m", "-l", "-f", "-o", "-u", "-p", "-b", "-g", "-e", "-log",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.PublicBaseURL, "url", config.PublicBaseURL, "public base URL for emailed links")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.TokenValidityDuration, "t", config.TokenValidityDuration, "session token validity")
	fs.DurationVar(&config.CookieValidityDuration, "k", config.CookieValidityDuration, "token cookie validity")
	fs.StringVar(&config.Environment, "m", config.Environment, "environment (development|production)")
	fs.Int64Var(&config.MaxUploadSize, "l", config.MaxUploadSize, "max upload size in bytes")
	fs.StringVar(&config.UploadPath, "f", config.UploadPath, "upload directory")
	fs.StringVar(&config.StorageBackend, "o", config.StorageBackend, "storage backend (local|s3)")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogFormat, "log", config.LogFormat, "log format (json|console)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
