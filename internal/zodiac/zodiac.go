// Package zodiac picks pseudonyms for anonymous comment authors.
package zodiac

import "math/rand/v2"

// Animals follows the Vietnamese twelve-animal cycle, so Cat and Buffalo
// instead of Rabbit and Ox.
var Animals = []string{
	"Anonymous Rat", "Anonymous Buffalo", "Anonymous Tiger", "Anonymous Cat",
	"Anonymous Dragon", "Anonymous Snake", "Anonymous Horse", "Anonymous Goat",
	"Anonymous Monkey", "Anonymous Rooster", "Anonymous Dog", "Anonymous Pig",
}

func RandomName() string {
	return Animals[rand.IntN(len(Animals))]
}
