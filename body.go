package pbd

import (
	"fmt"

	"cogentcore.org/core/math32"
)

var bodyCur int = 0

// Body is a simulated body: a bounding sphere for pair finding plus an
// optional particle sampling of its surface with a hierarchy over it.
// Bodies translate; orientation is the outer solver's business.
type Body struct {
	// UserData is an object this body is associated with.
	//
	// You can use this to get a reference to your game object or controller
	// object from within callbacks.
	UserData any
	Space    *Space

	id           int
	bodyType     BodyType
	velocityFunc BodyVelocityFunc // Integration function
	positionFunc BodyPositionFunc // Integration function
	mass         float32
	massInverse  float32
	radius       float32 // Bounding sphere radius
	position     math32.Vector3
	velocity     math32.Vector3
	force        math32.Vector3

	// collisionParticles sample the body surface in local space. The
	// hierarchy is built over them once and refit when they move.
	collisionParticles *ParticleSet
	hierarchy          *BVH

	node             int32 // graph node id for the current step
	sleepingIdleTime float32
}

// String returns body id as string
func (b Body) String() string {
	return fmt.Sprint("Body ", b.id)
}

// NewBody initializes a dynamic body with the given mass and bounding
// sphere radius.
func NewBody(mass, radius float32) *Body {
	assert(mass > 0, "dynamic body mass must be positive")
	assert(radius > 0, "body radius must be positive")
	body := &Body{
		id:           bodyCur,
		bodyType:     Dynamic,
		mass:         mass,
		massInverse:  1.0 / mass,
		radius:       radius,
		velocityFunc: BodyUpdateVelocity,
		positionFunc: BodyUpdatePosition,
		node:         indexNone,
	}
	bodyCur++
	return body
}

// NewStaticBody initializes an immovable body.
func NewStaticBody(radius float32) *Body {
	body := NewBody(1, radius)
	body.bodyType = Static
	body.mass = infinity
	body.massInverse = 0
	body.sleepingIdleTime = infinity
	return body
}

// NewKinematicBody initializes a body moved by its velocity but unaffected
// by forces and contacts.
func NewKinematicBody(radius float32) *Body {
	body := NewBody(1, radius)
	body.bodyType = Kinematic
	body.mass = infinity
	body.massInverse = 0
	return body
}

// Id returns the body id.
func (b *Body) Id() int {
	return b.id
}

// Type returns the body type.
func (b *Body) Type() BodyType {
	return b.bodyType
}

// Mass returns the body mass.
func (b *Body) Mass() float32 {
	return b.mass
}

// Radius returns the bounding sphere radius.
func (b *Body) Radius() float32 {
	return b.radius
}

// Position returns the body position.
func (b *Body) Position() math32.Vector3 {
	return b.position
}

// SetPosition moves the body and wakes it.
func (b *Body) SetPosition(position math32.Vector3) {
	b.position = position
	b.Activate()
}

// Velocity returns the body velocity.
func (b *Body) Velocity() math32.Vector3 {
	return b.velocity
}

// SetVelocity sets the body velocity and wakes it.
func (b *Body) SetVelocity(velocity math32.Vector3) {
	b.velocity = velocity
	b.Activate()
}

// ApplyForce accumulates a force for the next velocity integration.
func (b *Body) ApplyForce(force math32.Vector3) {
	b.force = b.force.Add(force)
	b.Activate()
}

// Activate resets the body's idle time so it is not skipped as sleeping.
func (b *Body) Activate() {
	if b.bodyType == Dynamic {
		b.sleepingIdleTime = 0
	}
}

// IdleTime returns how long the body has been below the idle speed
// threshold.
func (b *Body) IdleTime() float32 {
	return b.sleepingIdleTime
}

// SetCollisionParticles attaches a surface sampling in local space and
// builds its hierarchy with the given depth bound and leaf size.
func (b *Body) SetCollisionParticles(particles *ParticleSet, maxDepth, leafSize int) {
	b.collisionParticles = particles
	b.hierarchy = NewBVH(particles, maxDepth, leafSize)
}

// CollisionParticles returns the body's surface sampling, nil if none.
func (b *Body) CollisionParticles() *ParticleSet {
	return b.collisionParticles
}

// Hierarchy returns the hierarchy over the collision particles, nil if none.
func (b *Body) Hierarchy() *BVH {
	return b.hierarchy
}

// BoundingBox returns the world-space box of the body: the particle box
// when a sampling is attached, the bounding sphere box otherwise.
func (b *Body) BoundingBox() math32.Box3 {
	if b.collisionParticles != nil && b.collisionParticles.Size() > 0 {
		box := b.collisionParticles.BoundingBox()
		return box.Translate(b.position)
	}
	half := math32.Vector3{X: b.radius, Y: b.radius, Z: b.radius}
	return math32.Box3{Min: b.position.Sub(half), Max: b.position.Add(half)}
}

// BodyUpdateVelocity is the default velocity integration function.
func BodyUpdateVelocity(body *Body, gravity math32.Vector3, damping float32, dt float32) {
	if body.bodyType != Dynamic {
		return
	}
	body.velocity = body.velocity.MulScalar(damping).
		Add(gravity.Add(body.force.MulScalar(body.massInverse)).MulScalar(dt))
	body.force = math32.Vector3{}
}

// BodyUpdatePosition is the default position integration function.
func BodyUpdatePosition(body *Body, dt float32) {
	if body.bodyType == Static {
		return
	}
	body.position = body.position.Add(body.velocity.MulScalar(dt))
}
