// Package keygen generates random secrets from restricted alphabets.
//
// Characters are drawn uniformly from the alphabet using crypto/rand.
package keygen
