package rigid2d

// JointType tags the joint variants.
type JointType uint8

const (
	UnknownJointType JointType = iota
	RevoluteJointType
	PrismaticJointType
	DistanceJointType
	PulleyJointType
	MouseJointType
	GearJointType
	WheelJointType
	WeldJointType
	FrictionJointType
	RopeJointType
	MotorJointType
)

// Limit states for joints with limits.
type limitState uint8

const (
	inactiveLimit limitState = iota
	atLowerLimit
	atUpperLimit
	equalLimits
)

// JointEdge connects bodies and joints together in a joint graph where each
// body is a node and each joint is an edge. Each joint has two edges, one in
// each attached body's intrusive list.
type JointEdge struct {
	Other *Body // the other body attached through this joint
	Joint Joint
	Prev  *JointEdge
	Next  *JointEdge
}

// jointDefCommon carries the fields shared by all joint definitions.
type jointDefCommon struct {
	// BodyA and BodyB are the attached bodies; one may be static.
	BodyA *Body
	BodyB *Body

	// CollideConnected allows the attached bodies to collide.
	CollideConnected bool

	// UserData is opaque application data.
	UserData interface{}
}

func (d *jointDefCommon) common() *jointDefCommon {
	return d
}

// JointDef is implemented by the per-kind definition structs. Pass one to
// World.CreateJoint.
type JointDef interface {
	common() *jointDefCommon
	create() Joint
}

// Joint constrains two bodies together. The concrete kinds are created
// through World.CreateJoint with the matching definition struct.
type Joint interface {
	// Type identifies the concrete joint kind.
	Type() JointType

	BodyA() *Body
	BodyB() *Body

	// AnchorA returns the anchor point on body A in world coordinates.
	AnchorA() Vec2

	// AnchorB returns the anchor point on body B in world coordinates.
	AnchorB() Vec2

	// ReactionForce returns the reaction force on body B at the anchor,
	// given the inverse time step.
	ReactionForce(invDT float64) Vec2

	// ReactionTorque returns the reaction torque on body B.
	ReactionTorque(invDT float64) float64

	// Next returns the next joint in the world list.
	Next() Joint

	UserData() interface{}
	SetUserData(data interface{})

	// CollideConnected reports whether the attached bodies may collide.
	CollideConnected() bool

	// IsEnabled reports whether both attached bodies are enabled.
	IsEnabled() bool

	// ShiftOrigin adjusts any world-space state after a world origin shift.
	ShiftOrigin(newOrigin Vec2)

	base() *jointBase
	initVelocityConstraints(data solverData)
	solveVelocityConstraints(data solverData)
	solvePositionConstraints(data solverData) bool
}

// jointBase carries the linkage and bookkeeping shared by every joint kind.
type jointBase struct {
	jointType JointType
	prev      Joint
	next      Joint
	edgeA     JointEdge
	edgeB     JointEdge
	bodyA     *Body
	bodyB     *Body

	index            int
	islandFlag       bool
	collideConnected bool
	userData         interface{}
}

func makeJointBase(jointType JointType, def JointDef) jointBase {
	c := def.common()
	assert(c.BodyA != c.BodyB)

	return jointBase{
		jointType:        jointType,
		bodyA:            c.BodyA,
		bodyB:            c.BodyB,
		collideConnected: c.CollideConnected,
		userData:         c.UserData,
	}
}

func (j *jointBase) base() *jointBase { return j }

func (j *jointBase) Type() JointType {
	return j.jointType
}

func (j *jointBase) BodyA() *Body {
	return j.bodyA
}

func (j *jointBase) BodyB() *Body {
	return j.bodyB
}

func (j *jointBase) Next() Joint {
	return j.next
}

func (j *jointBase) UserData() interface{} {
	return j.userData
}

func (j *jointBase) SetUserData(data interface{}) {
	j.userData = data
}

func (j *jointBase) CollideConnected() bool {
	return j.collideConnected
}

func (j *jointBase) IsEnabled() bool {
	return j.bodyA.IsEnabled() && j.bodyB.IsEnabled()
}

// ShiftOrigin is a no-op for joints with purely local state.
func (j *jointBase) ShiftOrigin(newOrigin Vec2) {}
