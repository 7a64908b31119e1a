// Package hexiota models spell values ("iotas"): patterns, numbers,
// booleans, vectors, null, lists and text.
//
// Iotas have their own text notation:
//
//	Pattern:  <se,aqaa>   (direction, then instructions over aqweds)
//	Number:   12, -0.5, .25
//	Boolean:  true false True False
//	Null:     null Null NULL
//	Vector:   (1,2.5,-3)
//	List:     [<e,w>,1,true]
//	Text:     "say \"hi\""
//
// and lower to structured data through AsNBT, producing the
// {"hexcasting:type":...,"hexcasting:data":...} compound the game stores.
// A lowered compound may also appear inline in iota text; FromNBT raises
// it back.
package hexiota
