package pbd

import "cogentcore.org/core/math32"

// Contact is one contact constraint between two bodies. Contacts live in
// pooled buffers owned by the space and are rebuilt every step; a Contact
// pointer is only valid within the step that produced it.
type Contact struct {
	bodyA, bodyB *Body

	point  math32.Vector3 // deepest contact location, world space
	normal math32.Vector3 // unit, points from bodyB towards bodyA
	phi    float32        // signed separation; negative when penetrating

	// separationOffset rebases the center delta onto phi, so the solver can
	// re-evaluate the separation as positions move between iterations.
	separationOffset float32
}

// Bodies returns the contact pair.
func (c *Contact) Bodies() (*Body, *Body) {
	return c.bodyA, c.bodyB
}

// Point returns the deepest contact location in world space.
func (c *Contact) Point() math32.Vector3 {
	return c.point
}

// Normal returns the contact normal, pointing from the second body towards
// the first.
func (c *Contact) Normal() math32.Vector3 {
	return c.normal
}

// Phi returns the signed separation distance.
func (c *Contact) Phi() float32 {
	return c.phi
}

// ContactBuffer is a pooled fixed-size arena of contacts. Buffers form a
// ring; the space reuses a buffer once its stamp is old enough.
type ContactBuffer struct {
	// header
	stamp       uint
	next        *ContactBuffer
	numContacts int

	// buffer itself
	contacts [ContactsBufferSize]Contact
}

func NewContactBuffer(stamp uint, splice *ContactBuffer) *ContactBuffer {
	buffer := &ContactBuffer{}
	return buffer.InitHeader(stamp, splice)
}

func (buffer *ContactBuffer) InitHeader(stamp uint, splice *ContactBuffer) *ContactBuffer {
	buffer.stamp = stamp
	if splice != nil {
		buffer.next = splice.next
	} else {
		buffer.next = buffer
	}
	buffer.numContacts = 0
	return buffer
}

// cachedContact tracks a body pair across steps so contact history survives
// short separations.
type cachedContact struct {
	bodyA, bodyB *Body
	stamp        uint // last step the pair touched
	collisionId  uint32
}

type bodyPair struct {
	a, b *Body
}

func cachedContactEql(pair bodyPair, cached *cachedContact) bool {
	return (pair.a == cached.bodyA && pair.b == cached.bodyB) ||
		(pair.b == cached.bodyA && pair.a == cached.bodyB)
}
