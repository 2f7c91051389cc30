package gfx

// BlendWeight is a blend factor.
type BlendWeight int

const (
	BlendZero BlendWeight = iota
	BlendOne
	BlendSrcColor
	BlendInvSrcColor
	BlendSrcAlpha
	BlendInvSrcAlpha
	BlendDestAlpha
	BlendInvDestAlpha
	BlendDestColor
	BlendInvDestColor
)

// BlendOperation combines the weighted source and destination.
type BlendOperation int

const (
	BlendAdd BlendOperation = iota
	BlendSubtract
	BlendRevSubtract
	BlendMin
	BlendMax
)

// BlendPair is one blend equation: Source*src (Operation) Destination*dst.
type BlendPair struct {
	Source      BlendWeight
	Destination BlendWeight
	Operation   BlendOperation
}

// DefaultBlendPair writes the source unchanged.
func DefaultBlendPair() BlendPair {
	return BlendPair{Source: BlendOne, Destination: BlendZero, Operation: BlendAdd}
}

// Enabled reports whether the pair differs from a plain overwrite.
func (p BlendPair) Enabled() bool {
	return p != DefaultBlendPair()
}

// BlendDesc holds separate color and alpha equations.
type BlendDesc struct {
	Color BlendPair
	Alpha BlendPair
}

// Combined uses the same equation for color and alpha.
func Combined(pair BlendPair) BlendDesc {
	return BlendDesc{Color: pair, Alpha: pair}
}

// Independent uses separate color and alpha equations.
func Independent(color, alpha BlendPair) BlendDesc {
	return BlendDesc{Color: color, Alpha: alpha}
}

// Additive sums source and destination on every channel.
func Additive() BlendDesc {
	return Combined(BlendPair{Source: BlendOne, Destination: BlendOne, Operation: BlendAdd})
}

// AlphaBlend is conventional source-over blending.
func AlphaBlend() BlendDesc {
	return Independent(
		BlendPair{Source: BlendSrcAlpha, Destination: BlendInvSrcAlpha, Operation: BlendAdd},
		BlendPair{Source: BlendOne, Destination: BlendInvSrcAlpha, Operation: BlendAdd},
	)
}
