// Package loader reads state trees and launcher manifests from YAML or JSON.
//
// A state tree file is a single StateConfig:
//
//	key: MAIN
//	transitions:
//	  - ["", "*", "LOGIN"]
//	  - ["LOGIN", "ok", "MAIN_VIEW"]
//	states:
//	  - key: LOGIN
//	    transitions:
//	      - ["", "*", "FORM"]
//
// A manifest lists named processes, the ones to start, and the shared context
// values handed to them:
//
//	start: [main]
//	context:
//	  user: guest
//	processes:
//	  - name: main
//	    file: main.yaml
package loader
