// Package domain contains the value types exchanged between the lifecycle
// core and its collaborators: the models bound to the window after a
// successful start, wallet descriptors and payment requests.
package domain
