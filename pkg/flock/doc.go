// Package flock implements Reynolds-style flocking in a bounded 2D world.
//
// Each tick every agent combines three local rules over the agents around it:
// separation (flee neighbors closer than SeparationDistance), alignment (match
// the mean velocity of neighbors within NeighborDistance) and cohesion (seek
// their center of mass). The weighted sum is clamped to MaxSteerForce,
// integrated into the velocity, which is clamped to MaxSpeed, and the agent is
// moved and wrapped at the world edges.
//
// Neighbors are found by a brute-force scan of the whole population. A Flock
// hands every agent an explicit snapshot; there is no global state.
package flock
