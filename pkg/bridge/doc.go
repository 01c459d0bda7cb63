// Package bridge carries the byte stream of the protocol over packet
// transports such as MQTT and websocket, so an engine running on a host
// OS can reach a remote renderer.
package bridge
