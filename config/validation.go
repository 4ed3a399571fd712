package config

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/prebid/aolhtb/errortypes"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

var (
	loadSchemasOnce sync.Once
	displaySchema   *gojsonschema.Schema
	mobileSchema    *gojsonschema.Schema
	loadSchemasErr  error
)

func loadSchemas() {
	displaySchema, loadSchemasErr = loadSchema("schemas/onedisplay.json")
	if loadSchemasErr != nil {
		return
	}
	mobileSchema, loadSchemasErr = loadSchema("schemas/onemobile.json")
}

func loadSchema(name string) (*gojsonschema.Schema, error) {
	contents, err := schemaFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("Failed to read json schema %s: %v", name, err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(contents))
	if err != nil {
		return nil, fmt.Errorf("Failed to load json schema %s: %v", name, err)
	}
	return schema, nil
}

// ValidatePartner checks the partner config against the OneDisplay shape first and the OneMobile
// shape second, and records the first one that matches. A config matching neither is a ConfigError
// carrying the failures of both.
func ValidatePartner(p *Partner) (ProductLine, error) {
	loadSchemasOnce.Do(loadSchemas)
	if loadSchemasErr != nil {
		return "", loadSchemasErr
	}

	displayErrs, err := validateAgainst(displaySchema, p)
	if err != nil {
		return "", err
	}
	if displayErrs == "" {
		p.productLine = ProductLineDisplay
		return ProductLineDisplay, nil
	}

	mobileErrs, err := validateAgainst(mobileSchema, p)
	if err != nil {
		return "", err
	}
	if mobileErrs == "" {
		p.productLine = ProductLineMobile
		return ProductLineMobile, nil
	}

	return "", &errortypes.ConfigError{
		Message: "AOL config: " + displayErrs + "; AOLM config: " + mobileErrs,
	}
}

func validateAgainst(schema *gojsonschema.Schema, p *Partner) (string, error) {
	result, err := schema.Validate(gojsonschema.NewGoLoader(p))
	if err != nil {
		return "", err
	}
	if result.Valid() {
		return "", nil
	}

	errBuilder := bytes.NewBuffer(make([]byte, 0, 300))
	for i, resultErr := range result.Errors() {
		if i > 0 {
			errBuilder.WriteString(", ")
		}
		errBuilder.WriteString(resultErr.String())
	}
	return errBuilder.String(), nil
}
