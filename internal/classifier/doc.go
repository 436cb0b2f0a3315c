// Package classifier runs an external zero-shot image classifier over the
// media table and writes the AI detections table.
//
// The classifier is any executable that accepts an image path as its last
// argument and prints a single JSON object:
//
//	{"observationType":"animal","probability":0.91,"scientificName":"Odocoileus virginianus","speciesProbability":0.62}
//
// scientificName and speciesProbability are optional. The detect stage keeps
// a species only for animal detections whose species probability reaches the
// configured minimum.
package classifier
