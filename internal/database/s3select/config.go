package s3select

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/redbco/redb-connect/internal/database/awsraw"
	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
)

const (
	keyBucket          = "bucket"
	keyFile            = "file"
	keyType            = "type"
	keyCompression     = "compression"
	keyRecordDelimiter = "record_delimiter"
	keyFieldDelimiter  = "field_delimiter"
	keyLimit           = "limit"

	defaultCompression     = "NONE"
	defaultRecordDelimiter = "\n"
	defaultFieldDelimiter  = ","

	defaultQuery = "SELECT * FROM S3Object"
)

// FileType is the format of the queried objects.
type FileType string

const (
	TypeCSV     FileType = "csv"
	TypeJSON    FileType = "json"
	TypeParquet FileType = "parquet"
)

// Options is the validated query configuration.
type Options struct {
	Bucket          string
	File            string
	Type            FileType
	Compression     string
	RecordDelimiter string
	FieldDelimiter  string
	Limit           int
	Region          string
}

func optionsFrom(cfg connector.Config) Options {
	return Options{
		Bucket:          cfg.String(keyBucket),
		File:            cfg.String(keyFile),
		Type:            FileType(strings.ToLower(cfg.String(keyType))),
		Compression:     strings.ToUpper(cfg.StringOr(keyCompression, defaultCompression)),
		RecordDelimiter: stringOrRaw(cfg, keyRecordDelimiter, defaultRecordDelimiter),
		FieldDelimiter:  stringOrRaw(cfg, keyFieldDelimiter, defaultFieldDelimiter),
		Limit:           cfg.Int(keyLimit, 0),
		Region:          awsraw.Region(cfg),
	}
}

// stringOrRaw reads delimiters without trimming, so "\t" and "\n" survive.
func stringOrRaw(cfg connector.Config, key, def string) string {
	if s, ok := cfg[key].(string); ok && s != "" {
		return s
	}
	return def
}

func validate(cfg connector.Config) *connector.Validation {
	v := connector.NewValidation(dbcapabilities.S3Select)
	v.RequireConfig(cfg, keyBucket)
	v.RequireConfig(cfg, keyFile)
	v.RequireConfig(cfg, keyType)

	switch FileType(strings.ToLower(cfg.String(keyType))) {
	case TypeCSV, TypeJSON, TypeParquet:
	default:
		v.Fail(keyType, "Invalid file type, valid values are JSON, CSV or Parquet.")
	}

	if cfg.Has(keyCompression) {
		switch strings.ToUpper(cfg.String(keyCompression)) {
		case "BZIP2", "GZIP", "NONE":
		default:
			v.Fail(keyCompression, "Invalid compression type, valid values are BZIP2, GZIP or NONE.")
		}
	} else {
		v.Advise("Compression type is not provided. Will not use any compression.")
	}

	if cfg.Has(keyLimit) {
		if n, err := cast.ToIntE(cfg[keyLimit]); err != nil || n <= 0 {
			v.Fail(keyLimit, "Invalid limit, a positive integer is expected.")
		}
	}

	if !cfg.Has(connector.KeyRegion) {
		v.Advise("Region is not provided. Default region " + awsraw.DefaultRegion + " will be used.")
	}
	if _, ok := cfg[keyRecordDelimiter].(string); !ok || cfg[keyRecordDelimiter] == "" {
		v.Advise("Record delimiter is not provided. Default '\\n' will be used.")
	}
	if _, ok := cfg[keyFieldDelimiter].(string); !ok || cfg[keyFieldDelimiter] == "" {
		v.Advise("Field delimiter is not provided. Default ',' will be used.")
	}
	return v
}
