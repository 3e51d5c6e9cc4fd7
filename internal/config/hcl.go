package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vango-dev/storable/internal/errors"
)

// hclFile is the top-level structure of storable.hcl.
//
//	name = "inventory"
//
//	server {
//	  addr    = ":8080"
//	  backend = "s3"
//	  s3 {
//	    bucket = "records"
//	  }
//	}
//
//	collection "products" {
//	  field "name" {
//	    rules = "required,min=2"
//	  }
//	  field "price" {
//	    default = 0
//	    expr    = "value >= 0"
//	    message = "Price cannot be negative"
//	  }
//	  constraint {
//	    expr = "price > 0 || name != ''"
//	  }
//	}
//
//	editor "product-editor" {
//	  collection  = "products"
//	  save_button = "bbar.btn-save"
//	}
type hclFile struct {
	Name        string           `hcl:"name,optional"`
	Server      *hclServer       `hcl:"server,block"`
	Collections []*hclCollection `hcl:"collection,block"`
	Editors     []*hclEditor     `hcl:"editor,block"`
}

type hclServer struct {
	Addr           string   `hcl:"addr,optional"`
	Backend        string   `hcl:"backend,optional"`
	RequestTimeout string   `hcl:"request_timeout,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
	S3             *hclS3   `hcl:"s3,block"`
}

type hclS3 struct {
	Bucket   string `hcl:"bucket"`
	Prefix   string `hcl:"prefix,optional"`
	Region   string `hcl:"region,optional"`
	Endpoint string `hcl:"endpoint,optional"`
}

type hclCollection struct {
	ID          string           `hcl:"id,label"`
	AutoSave    bool             `hcl:"auto_save,optional"`
	Fields      []*hclField      `hcl:"field,block"`
	Constraints []*hclConstraint `hcl:"constraint,block"`
}

type hclField struct {
	Name    string     `hcl:"name,label"`
	Default *cty.Value `hcl:"default,optional"`
	Rules   string     `hcl:"rules,optional"`
	Expr    string     `hcl:"expr,optional"`
	Message string     `hcl:"message,optional"`
}

type hclConstraint struct {
	Expr    string `hcl:"expr"`
	Message string `hcl:"message,optional"`
}

type hclEditor struct {
	ID           string `hcl:"id,label"`
	Collection   string `hcl:"collection"`
	SaveButton   string `hcl:"save_button,optional"`
	CancelButton string `hcl:"cancel_button,optional"`
	Mask         *bool  `hcl:"mask,optional"`
	MaskMessage  string `hcl:"mask_message,optional"`
}

// LoadHCL reads configuration from an HCL file.
func LoadHCL(path string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, diagError(path, diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, diagError(path, diags)
	}

	cfg := New()
	cfg.Name = parsed.Name
	if s := parsed.Server; s != nil {
		cfg.Server.Addr = s.Addr
		cfg.Server.Backend = s.Backend
		cfg.Server.RequestTimeout = s.RequestTimeout
		cfg.Server.AllowedOrigins = s.AllowedOrigins
		if s.S3 != nil {
			cfg.Server.S3 = S3Config(*s.S3)
		}
	}

	for _, hc := range parsed.Collections {
		coll := CollectionConfig{ID: hc.ID, AutoSave: hc.AutoSave}
		for _, hf := range hc.Fields {
			f := FieldConfig{Name: hf.Name, Rules: hf.Rules, Expr: hf.Expr, Message: hf.Message}
			if hf.Default != nil {
				v, err := ctyToGo(*hf.Default)
				if err != nil {
					return nil, errors.New("S007").
						WithDetailf("collection %q field %q default", hc.ID, hf.Name).
						Wrap(err)
				}
				f.Default = v
			}
			coll.Fields = append(coll.Fields, f)
		}
		for _, con := range hc.Constraints {
			coll.Constraints = append(coll.Constraints, ConstraintConfig(*con))
		}
		cfg.Collections = append(cfg.Collections, coll)
	}

	for _, he := range parsed.Editors {
		cfg.Editors = append(cfg.Editors, EditorConfig(*he))
	}

	cfg.path = path
	cfg.applyDefaults()
	return cfg, nil
}

func diagError(path string, diags hcl.Diagnostics) error {
	err := errors.New("S007").WithDetail(diags.Error())
	for _, d := range diags {
		if d.Severity == hcl.DiagError && d.Subject != nil {
			return err.WithLocation(path, d.Subject.Start.Line, d.Subject.Start.Column)
		}
	}
	return err
}

// ctyToGo converts a cty value into the plain Go values records hold.
// Numbers become float64 to match what JSON decoding yields.
func ctyToGo(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			gv, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = gv
		}
		return out, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			gv, err := ctyToGo(v)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
