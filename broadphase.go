package pbd

import "cogentcore.org/core/math32"

// computeConstraints rebuilds the step's contact list from the current body
// positions: bounding box rejection first, then particle sampling against
// the other body's sphere, keeping the deepest point per pair.
func (space *Space) computeConstraints() {
	space.contacts = space.contacts[:0]
	space.broadphaseCandidates = 0
	space.narrowphaseTests = 0
	space.narrowphaseRejected = 0

	for i, bodyA := range space.DynamicBodies {
		for _, bodyB := range space.DynamicBodies[i+1:] {
			space.pairConstraint(bodyA, bodyB)
		}
		for _, bodyB := range space.StaticBodies {
			space.pairConstraint(bodyA, bodyB)
		}
	}

	// Expire cached pairs that have been separated for longer than the
	// persistence window.
	space.cachedContacts.Filter(func(cached *cachedContact) bool {
		return space.stamp-cached.stamp < space.config.CollisionPersistence
	})
}

func (space *Space) pairConstraint(bodyA, bodyB *Body) {
	if bodyA.bodyType != Dynamic && bodyB.bodyType != Dynamic {
		return
	}
	space.broadphaseCandidates++

	thickness := space.config.CollisionDistance
	boxA := bodyA.BoundingBox()
	boxA.ExpandByScalar(thickness)
	if !boxA.IntersectsBox(bodyB.BoundingBox()) {
		return
	}

	contact := space.deepestContact(bodyA, bodyB, thickness)
	if contact == nil {
		return
	}

	pair := bodyPair{a: bodyA, b: bodyB}
	hash := hashPair(HashValue(bodyA.id), HashValue(bodyB.id))
	cached := space.cachedContacts.Insert(hash, pair, func(p bodyPair) *cachedContact {
		space.collisionIdCounter++
		return &cachedContact{bodyA: p.a, bodyB: p.b, collisionId: space.collisionIdCounter}
	})
	cached.stamp = space.stamp

	space.contacts = append(space.contacts, contact)
}

// deepestContact returns the deepest contact between the pair, nil when the
// pair is separated by more than thickness. When one body carries collision
// particles they are sampled against the other's bounding sphere through
// the particle hierarchy; bare pairs fall back to the sphere-sphere test.
func (space *Space) deepestContact(bodyA, bodyB *Body, thickness float32) *Contact {
	sampled, against := bodyB, bodyA
	if sampled.collisionParticles == nil || sampled.collisionParticles.Size() == 0 {
		sampled, against = bodyA, bodyB
	}
	if sampled.collisionParticles == nil || sampled.collisionParticles.Size() == 0 {
		return space.sphereContact(bodyA, bodyB, thickness)
	}

	// Query box in the sampled body's local space.
	queryBox := against.BoundingBox()
	queryBox.ExpandByScalar(thickness)
	queryBox = queryBox.Translate(sampled.position.Negate())

	candidates := sampled.hierarchy.FindAllIntersections(queryBox)
	positions := sampled.collisionParticles.Positions

	deepest := (*Contact)(nil)
	for _, pi := range candidates {
		space.narrowphaseTests++
		point := positions[pi].Add(sampled.position)
		delta := against.position.Sub(point)
		dist := delta.Length()
		phi := dist - against.radius

		if phi >= thickness {
			space.narrowphaseRejected++
			continue
		}
		if deepest != nil && phi >= deepest.phi {
			continue
		}

		normal := math32.Vec3(1, 0, 0)
		if dist > magicEpsilon {
			normal = delta.DivScalar(dist)
		}
		if sampled == bodyA {
			// Keep the normal pointing from bodyB towards bodyA.
			normal = normal.Negate()
		}
		if deepest == nil {
			deepest = space.allocContact()
			deepest.bodyA = bodyA
			deepest.bodyB = bodyB
		}
		deepest.point = point
		deepest.normal = normal
		deepest.phi = phi
		deepest.separationOffset = bodyA.position.Sub(bodyB.position).Dot(normal) - phi
	}
	return deepest
}

func (space *Space) sphereContact(bodyA, bodyB *Body, thickness float32) *Contact {
	space.narrowphaseTests++
	delta := bodyA.position.Sub(bodyB.position)
	dist := delta.Length()
	phi := dist - (bodyA.radius + bodyB.radius)
	if phi >= thickness {
		space.narrowphaseRejected++
		return nil
	}

	normal := math32.Vec3(1, 0, 0)
	if dist > magicEpsilon {
		normal = delta.DivScalar(dist)
	}
	contact := space.allocContact()
	contact.bodyA = bodyA
	contact.bodyB = bodyB
	contact.normal = normal
	contact.phi = phi
	contact.point = bodyB.position.Add(normal.MulScalar(bodyB.radius + phi*0.5))
	contact.separationOffset = delta.Dot(normal) - phi
	return contact
}

// allocContact hands out a contact from the pooled buffer ring, growing the
// ring when the newest buffer is full and the oldest is still fresh.
func (space *Space) allocContact() *Contact {
	head := space.contactBuffersHead
	if head == nil || head.numContacts == ContactsBufferSize {
		space.pushFreshContactBuffer()
		head = space.contactBuffersHead
	}
	contact := &head.contacts[head.numContacts]
	head.numContacts++
	*contact = Contact{}
	return contact
}

func (space *Space) pushFreshContactBuffer() {
	stamp := space.stamp
	head := space.contactBuffersHead

	if head == nil {
		space.contactBuffersHead = NewContactBuffer(stamp, nil)
	} else if stamp-head.next.stamp > space.config.CollisionPersistence {
		// The oldest buffer in the ring is stale; recycle it.
		tail := head.next
		space.contactBuffersHead = tail.InitHeader(stamp, tail)
	} else {
		buffer := NewContactBuffer(stamp, head)
		head.next = buffer
		space.contactBuffersHead = buffer
	}
}
