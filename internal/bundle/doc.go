// Package bundle provides the .cnet deployment bundle: a model's encoded
// layers and weight chunks in one checksummed file, ready to be replayed
// against a target.
//
//	Format Structure:
//	  [4 bytes: Magic "CNET"]
//	  [4 bytes: Version (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON metadata]
//	  [Payload]
//	  [32 bytes: SHA-256 of payload]
//
//	Payload:
//	  per layer:  [uint32 LE length][blob]
//	  per chunk:  [uint8 kind][uint32 LE instance][uint32 LE offset]
//	              [uint32 LE n][n x int64 LE scalars]
//
// Layer and chunk counts live in the header.
//
// Example usage:
//
//	plan, err := desc.Plan(fixed.Q32, 512)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := bundle.WriteFile("mnist.cnet", plan); err != nil {
//	    log.Fatal(err)
//	}
//
//	b, err := bundle.ReadFile("mnist.cnet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	t := target.New(b.Scale)
//	err = t.Deploy(b.Layers, b.Chunks)
package bundle
