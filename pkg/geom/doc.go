// Package geom provides the small amount of 3D math the toolpath core needs:
// points and vectors, straight lines and polylines, and orthonormal build
// frames. Vectors are sdfx v3.Vec values so they interoperate with the sdfx
// transform matrices used for rotations.
package geom
