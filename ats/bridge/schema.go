package bridge

import (
	"embed"
	"encoding/json"
	"io"
	"path"
	"strings"
	gosync "sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/teranos/qntx-core/errors"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://schemas.qntx.local/core/"

// Input schemas, by file name under schemas/.
const (
	schemaClassify       = "classify.json"
	schemaExpand         = "expand.json"
	schemaClaims         = "claims.json"
	schemaAttestation    = "attestation.json"
	schemaMerkleEntry    = "merkle_entry.json"
	schemaMerkleContains = "merkle_contains.json"
	schemaMerkleDiff     = "merkle_diff.json"
	schemaMerkleFind     = "merkle_find.json"
)

var (
	schemasOnce gosync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

// compiledSchemas compiles every embedded schema once. Shared definitions
// (claim.json, hash.json) are resolved through relative $refs.
func compiledSchemas() (map[string]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		schemas, schemasErr = compileSchemas()
	})
	return schemas, schemasErr
}

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, errors.Wrap(err, "read embedded schemas")
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	for _, entry := range entries {
		raw, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "read schema %s", entry.Name())
		}
		if err := c.AddResource(schemaBaseURL+entry.Name(), strings.NewReader(string(raw))); err != nil {
			return nil, errors.Wrapf(err, "load schema %s", entry.Name())
		}
	}

	compiled := make(map[string]*jsonschema.Schema)
	for _, name := range []string{
		schemaClassify, schemaExpand, schemaClaims, schemaAttestation,
		schemaMerkleEntry, schemaMerkleContains, schemaMerkleDiff, schemaMerkleFind,
	} {
		s, err := c.Compile(schemaBaseURL + name)
		if err != nil {
			return nil, errors.Wrapf(err, "compile schema %s", name)
		}
		compiled[name] = s
	}
	return compiled, nil
}

// validate checks that input is a single JSON document conforming to the
// named schema.
func validate(schema, input string) error {
	compiled, err := compiledSchemas()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid JSON"), errors.ErrInvalidInput)
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.Mark(errors.New("invalid JSON: trailing data after document"), errors.ErrInvalidInput)
	}
	if err := compiled[schema].Validate(doc); err != nil {
		return errors.Mark(err, errors.ErrInvalidInput)
	}
	return nil
}
