// Package config provides configuration parsing for storable projects.
//
// A project is described by storable.json or storable.hcl at its root. Both
// formats decode into the same Config: the record API server settings, the
// collections with their fields and rules, and the editors bound to them.
//
// # Configuration File Structure
//
//	{
//	  "name": "inventory",
//	  "server": {
//	    "addr": ":8080",
//	    "backend": "memory"
//	  },
//	  "collections": [
//	    {
//	      "id": "products",
//	      "fields": [
//	        {"name": "name", "rules": "required,min=2"},
//	        {"name": "price", "default": 0, "expr": "value >= 0"}
//	      ],
//	      "constraints": [
//	        {"expr": "price < 10000", "message": "Too expensive"}
//	      ]
//	    }
//	  ],
//	  "editors": [
//	    {"id": "product-editor", "collection": "products", "saveButton": "bbar.btn-save"}
//	  ]
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
