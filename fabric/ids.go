package fabric

// JointID indexes the joint arena. It is stable for the joint's lifetime.
type JointID int

// IntervalID indexes the interval arena.
type IntervalID int

// FaceID indexes the face arena.
type FaceID int

// Invalid is returned by lookups and connection fields with nothing
// attached; no arena ever assigns this id.
const Invalid = -1
